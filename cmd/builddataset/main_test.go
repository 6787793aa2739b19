package main

import (
	"archive/zip"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"wbdcli/internal/config"
)

const archiveCSV = `Country Name,Country Code,Indicator Name,Indicator Code,2019,2020
Iraq,IRQ,GDP growth,I1,100,110
Iraq,IRQ,Unemployment,I2,5,3
`

const mappingCSV = `delta_col,indicator_code,direction
delta_a,I1,1
delta_b,I2,-1
`

// buildFixtures writes the three input files and returns their paths plus an
// output path inside the same temp dir.
func buildFixtures(t *testing.T) (wbZip, guidePath, mappingPath, outPath string) {
	t.Helper()
	dir := t.TempDir()

	wbZip = filepath.Join(dir, "wb.zip")
	zf, err := os.Create(wbZip)
	require.NoError(t, err)
	zw := zip.NewWriter(zf)
	w, err := zw.Create("API_I_DS2_en_csv_v2.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte(archiveCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	guidePath = filepath.Join(dir, "guide.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Country Code"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Year"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "IRQ"))
	require.NoError(t, f.SetCellValue(sheet, "B2", 2020))
	require.NoError(t, f.SetCellValue(sheet, "A3", "IRQ"))
	require.NoError(t, f.SetCellValue(sheet, "B3", 2021))
	require.NoError(t, f.SaveAs(guidePath))
	require.NoError(t, f.Close())

	mappingPath = filepath.Join(dir, "mapping.csv")
	require.NoError(t, os.WriteFile(mappingPath, []byte(mappingCSV), 0644))

	outPath = filepath.Join(dir, "out.xlsx")
	return wbZip, guidePath, mappingPath, outPath
}

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestRun_EndToEnd(t *testing.T) {
	wbZip, guidePath, mappingPath, outPath := buildFixtures(t)

	opts := options{
		wbZip:      wbZip,
		guidePath:  guidePath,
		mappingCSV: mappingPath,
		output:     outPath,
	}

	err := run(context.Background(), defaultConfig(t), opts, slog.Default())
	require.NoError(t, err)

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3, "row count preserved")

	assert.Equal(t,
		[]string{"Country Code", "Year", "delta_a", "delta_b", "gov_expected_changes"},
		rows[0])

	// 2020: delta_a = 1*(110-100) = 10, delta_b = -1*(3-5) = 2, mean = 6.
	assert.Equal(t, []string{"IRQ", "2020", "10", "2", "6"}, rows[1])

	// 2021: no archive data at all, every derived cell stays blank.
	require.GreaterOrEqual(t, len(rows[2]), 2)
	assert.Equal(t, "IRQ", rows[2][0])
	assert.Equal(t, "2021", rows[2][1])
	for c := 2; c < len(rows[2]); c++ {
		assert.Empty(t, rows[2][c])
	}
}

func TestRun_SumMode(t *testing.T) {
	wbZip, guidePath, mappingPath, outPath := buildFixtures(t)

	opts := options{
		wbZip:      wbZip,
		guidePath:  guidePath,
		mappingCSV: mappingPath,
		output:     outPath,
		agg:        "sum",
	}

	err := run(context.Background(), defaultConfig(t), opts, slog.Default())
	require.NoError(t, err)

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue(f.GetSheetName(0), "E2")
	require.NoError(t, err)
	assert.Equal(t, "12", got)
}

func TestRun_FatalErrorsWriteNoOutput(t *testing.T) {
	wbZip, guidePath, mappingPath, outPath := buildFixtures(t)

	base := options{
		wbZip:      wbZip,
		guidePath:  guidePath,
		mappingCSV: mappingPath,
		output:     outPath,
	}

	tests := []struct {
		name   string
		mutate func(o *options, dir string)
	}{
		{
			name:   "missing required flag",
			mutate: func(o *options, dir string) { o.wbZip = "" },
		},
		{
			name:   "missing archive",
			mutate: func(o *options, dir string) { o.wbZip = filepath.Join(dir, "nope.zip") },
		},
		{
			name:   "missing guide",
			mutate: func(o *options, dir string) { o.guidePath = filepath.Join(dir, "nope.xlsx") },
		},
		{
			name: "duplicate mapping column",
			mutate: func(o *options, dir string) {
				p := filepath.Join(dir, "dup.csv")
				content := "delta_col,indicator_code,direction\ndelta_gdp,I1,1\ndelta_gdp,I2,1\n"
				require.NoError(t, os.WriteFile(p, []byte(content), 0644))
				o.mappingCSV = p
			},
		},
		{
			name: "invalid direction",
			mutate: func(o *options, dir string) {
				p := filepath.Join(dir, "baddir.csv")
				content := "delta_col,indicator_code,direction\ndelta_gdp,I1,2\n"
				require.NoError(t, os.WriteFile(p, []byte(content), 0644))
				o.mappingCSV = p
			},
		},
		{
			name:   "invalid aggregation mode",
			mutate: func(o *options, dir string) { o.agg = "median" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			opts := base
			opts.output = filepath.Join(dir, "out.xlsx")
			tt.mutate(&opts, dir)

			err := run(context.Background(), defaultConfig(t), opts, slog.Default())
			require.Error(t, err)

			_, statErr := os.Stat(opts.output)
			assert.True(t, os.IsNotExist(statErr), "no partial output on fatal error")
		})
	}
}
