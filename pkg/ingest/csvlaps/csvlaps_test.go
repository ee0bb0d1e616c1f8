//nolint:funlen,lll // ok for tests
package csvlaps

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/iracelog-tirestrategy/pkg/model"
	"github.com/mpapenbr/iracelog-tirestrategy/testsupport/basedata"
)

const header = "Lap,Laptime,Compound,Front left tire usage (percentage),Front right tire usage (percentage),Rear left tire usage (percentage),Rear right tire usage (percentage)\n"

func TestRead(t *testing.T) {
	got, err := Read(strings.NewReader(basedata.SampleRaceCSV()))
	require.NoError(t, err)
	if diff := cmp.Diff(basedata.SampleRace(), got); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadValues(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []model.LapRecord
	}{
		{
			name: "header only",
			data: header,
			want: []model.LapRecord{},
		},
		{
			name: "distinct corners",
			data: header + "3,88.123,Medium,1.5,2.5,3.5,4.5\n",
			want: []model.LapRecord{
				{Lap: 3, LapTime: 88.123, Compound: model.CompoundMedium, Wear: [model.NumCorners]float64{1.5, 2.5, 3.5, 4.5}},
			},
		},
		{
			name: "padded values and float lap",
			data: header + " 4.0 , 90 , Soft ,1,2,3,4\n",
			want: []model.LapRecord{
				{Lap: 4, LapTime: 90, Compound: model.CompoundSoft, Wear: [model.NumCorners]float64{1, 2, 3, 4}},
			},
		},
		{
			name: "reordered columns",
			data: "Rear right tire usage (percentage),Compound name,Rear left tire usage (percentage),Front right tire usage (percentage),Front left tire usage (percentage),Laptime,Lap\n" +
				"4,Hard,3,2,1,91,7\n",
			want: []model.LapRecord{
				{Lap: 7, LapTime: 91, Compound: model.CompoundHard, Wear: [model.NumCorners]float64{1, 2, 3, 4}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.data))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Read() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "empty input",
			data:    "",
			wantErr: ErrNoHeader,
		},
		{
			name:    "missing wear column",
			data:    "Lap,Laptime,Compound,Front left tire usage (percentage)\n1,90,Soft,3\n",
			wantErr: ErrMissingColumn,
		},
		{
			name:    "missing compound column",
			data:    strings.Replace(header, "Compound", "Tyre", 1) + "1,90,Soft,1,2,3,4\n",
			wantErr: ErrMissingColumn,
		},
		{
			name:    "invalid wear",
			data:    header + "1,90,Soft,1,x,3,4\n",
			wantErr: ErrInvalidValue,
		},
		{
			name:    "NaN wear",
			data:    header + "2,90,Soft,NaN,2,2,2\n",
			wantErr: ErrInvalidValue,
		},
		{
			name:    "infinite lap time",
			data:    header + "2,+Inf,Soft,1,2,2,2\n",
			wantErr: ErrInvalidValue,
		},
		{
			name:    "infinite lap",
			data:    header + "Inf,90,Soft,1,2,2,2\n",
			wantErr: ErrInvalidValue,
		},
		{
			name:    "fractional lap",
			data:    header + "1.5,90,Soft,1,2,3,4\n",
			wantErr: ErrInvalidValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.data))
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestReadErrorNamesRow(t *testing.T) {
	_, err := Read(strings.NewReader(header + "1,90,Soft,1,2,3,4\n2,abc,Soft,1,2,3,4\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), ColLapTime)
}

func TestReadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "laps.csv")
	require.NoError(t, os.WriteFile(file, []byte(basedata.SampleRaceCSV()), 0o600))

	got, err := ReadFile(file)
	require.NoError(t, err)
	assert.Len(t, got, 10)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
