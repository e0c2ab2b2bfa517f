package cmd

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/notargets/goweno/weno"
)

type outputFile struct {
	io.Writer
	closers []io.Closer
	buf     *bufio.Writer
}

func (of *outputFile) Close() (err error) {
	if ferr := of.buf.Flush(); ferr != nil {
		err = ferr
	}
	for _, c := range of.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return
}

// createOutput opens fileName, compressing with zstd for .zst and lz4 for
// .lz4 names.
func createOutput(fileName string) (io.WriteCloser, error) {
	f, err := os.Create(fileName)
	if err != nil {
		return nil, err
	}
	of := &outputFile{}
	return of, of.wrap(f, strings.ToLower(filepath.Ext(fileName)))
}

func (of *outputFile) wrap(f io.WriteCloser, ext string) error {
	var w io.Writer = f
	switch ext {
	case ".zst":
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			f.Close()
			return err
		}
		of.closers = append(of.closers, zw)
		w = zw
	case ".lz4":
		lw := lz4.NewWriter(f)
		of.closers = append(of.closers, lw)
		w = lw
	}
	of.closers = append(of.closers, f)
	of.buf = bufio.NewWriter(w)
	of.Writer = of.buf
	return nil
}

// openInput reverses createOutput.
func openInput(fileName string) (io.ReadCloser, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return readCloser{Reader: zr, close: func() error { zr.Close(); return f.Close() }}, nil
	case ".lz4":
		return readCloser{Reader: lz4.NewReader(f), close: f.Close}, nil
	}
	return f, nil
}

type readCloser struct {
	io.Reader
	close func() error
}

func (rc readCloser) Close() error { return rc.close() }

// writeCoefficients writes one CSV row per cell and component: cell,
// component, order, sensor, mean, then the blended coefficients.
func writeCoefficients(w io.Writer, rec *weno.Reconstruction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"cell", "component", "order", "sensor", "mean", "coefficients"}); err != nil {
		return err
	}
	ff := func(x float64) string { return strconv.FormatFloat(x, 'g', 17, 64) }
	for k := 0; k < rec.NumCells(); k++ {
		for n := 0; n < rec.NumComponents(); n++ {
			c := rec.Coefficients(k, n)
			row := make([]string, 0, 5+len(c))
			row = append(row, strconv.Itoa(k), strconv.Itoa(n), strconv.Itoa(rec.Order(k)),
				ff(rec.Sensor(k)), ff(rec.Mean(k, n)))
			for _, v := range c {
				row = append(row, ff(v))
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("cell %d: %w", k, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
