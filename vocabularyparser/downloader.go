// Package vocabularyparser downloads and parses the diagnosis
// vocabulary and topography reference files. It is the engine's
// ingestion collaborator: all file and network I/O lives here, the
// search core only ever sees parsed records.
package vocabularyparser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/charmap"

	"github.com/idea4rc/diagnosis-search/logging"
)

// fetchFile retrieves a source into dataDir/<name>.csv. Sources with an
// http(s) scheme are downloaded, anything else is treated as a local
// path. Content is transparently gunzipped when the source ends in .gz,
// and decoded from ISO-8859-1 when it is not valid UTF-8 (the upstream
// exports are inconsistent about encoding).
func fetchFile(dataDir, name, source string) (string, error) {
	outPath := filepath.Join(dataDir, name+".csv")
	cleanPath := filepath.Clean(outPath)
	if !strings.HasPrefix(cleanPath, filepath.Clean(dataDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid filepath: %s", outPath)
	}

	raw, err := readSource(source)
	if err != nil {
		return "", err
	}

	if strings.HasSuffix(source, ".gz") {
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return "", fmt.Errorf("failed to gunzip %s: %w", source, err)
		}
		raw, err = io.ReadAll(gz)
		if err != nil {
			return "", fmt.Errorf("failed to gunzip %s: %w", source, err)
		}
		if err := gz.Close(); err != nil {
			return "", fmt.Errorf("failed to gunzip %s: %w", source, err)
		}
	}

	// Some upstream exports are ISO-8859-1, some UTF-8; sniff first.
	var reader io.Reader
	if utf8.Valid(raw) {
		reader = bytes.NewReader(raw)
	} else {
		reader = charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw))
	}

	outFile, err := os.Create(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", cleanPath, err)
	}
	defer func() {
		if err := outFile.Close(); err != nil {
			logging.Warn("Failed to close output file", "error", err)
		}
	}()

	w := bufio.NewWriter(outFile)
	if _, err := io.Copy(w, reader); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", cleanPath, err)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", cleanPath, err)
	}

	logging.Debug(fmt.Sprintf("%s fetched and decoded without errors", name))
	return cleanPath, nil
}

// readSource reads the raw bytes of a URL or local file.
func readSource(source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		raw, err := os.ReadFile(filepath.Clean(source))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", source, err)
		}
		return raw, nil
	}

	client := &http.Client{
		Timeout: 5 * time.Minute,
	}
	response, err := client.Get(source)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", source, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d downloading %s", response.StatusCode, source)
	}

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return raw, nil
}
