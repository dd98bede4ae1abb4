package reader

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/parqview/parqview-core/config"
)

// employeeRow matches the canonical 7-column fixture used across the
// package tests: ids are 1-based and sequential so range assertions are
// cheap to express.
type employeeRow struct {
	ID         int64   `parquet:"id"`
	Name       string  `parquet:"name"`
	Age        int64   `parquet:"age"`
	Salary     float64 `parquet:"salary"`
	Active     bool    `parquet:"active"`
	Department string  `parquet:"department"`
	JoinDate   int32   `parquet:"join_date,date"`
}

var departments = []string{"eng", "sales", "support", "ops"}

func employeeAt(i int) employeeRow {
	return employeeRow{
		ID:         int64(i + 1),
		Name:       fmt.Sprintf("emp-%04d", i+1),
		Age:        int64(20 + i%40),
		Salary:     30000 + float64(i)*12.5,
		Active:     i%2 == 0,
		Department: departments[i%len(departments)],
		JoinDate:   int32(19000 + i%365),
	}
}

// writeEmployeeFixture writes total rows to path on fs, flushing a row
// group every groupSize rows.
func writeEmployeeFixture(t *testing.T, fs afero.Fs, path string, total, groupSize int) {
	t.Helper()

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[employeeRow](&buf)
	for start := 0; start < total; start += groupSize {
		end := min(start+groupSize, total)
		rows := make([]employeeRow, 0, end-start)
		for i := start; i < end; i++ {
			rows = append(rows, employeeAt(i))
		}
		_, err := w.Write(rows)
		require.NoError(t, err)
		require.NoError(t, w.Flush())
	}
	require.NoError(t, w.Close())
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

func testConfig() config.Config {
	return config.Config{
		ReadBatchSize:     64,
		DecodeParallelism: 2,
		ScanBatchRows:     100,
	}
}

func newTestFacade(fs afero.Fs) *Facade {
	return New(NewReaderCache(fs), testConfig())
}

// countingFs wraps an afero.Fs and counts Open calls, making re-opens
// observable.
type countingFs struct {
	afero.Fs
	opens int32
}

func (c *countingFs) Open(name string) (afero.File, error) {
	c.opens++
	return c.Fs.Open(name)
}
