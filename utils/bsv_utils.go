package utils

import (
	"bufio"
	"io"
	"os"
	"path"
	"strings"

	"text2phenotype.com/refnorm/logger"
)

type GetHashFunc func(columns []string) uint64

// NewBSVReader streams the rows of a bar-separated file. Lines are lowercased,
// comment lines (# or //) are skipped and rows with a hash already seen are
// dropped, so vocabulary files may contain duplicates.
func NewBSVReader(bsvPath string, getHash GetHashFunc) (<-chan []string, error) {
	_, fileName := path.Split(bsvPath)
	bsvLogger := logger.NewLogger("BSVReader (" + fileName + ")")

	f, err := os.Open(bsvPath)
	if err != nil {
		return nil, err
	}

	out := make(chan []string)

	go func() {
		defer f.Close()
		defer close(out)

		r := bufio.NewReader(f)

		// to remove duplicates
		var hashes = make(map[uint64]bool)

		for {
			line, err := r.ReadString('\n')
			if len(line) == 0 {
				if err == io.EOF {
					break
				} else if err != nil {
					bsvLogger.Error().Err(err)
					return
				}
			}

			if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
				continue
			}
			line = strings.ToLower(strings.Trim(line, "\n"))
			if line == "" {
				continue
			}
			columns := strings.Split(line, "|")

			hash := getHash(columns)

			if _, ok := hashes[hash]; !ok {
				hashes[hash] = true

				out <- columns
			}
		}
	}()

	return out, nil
}
