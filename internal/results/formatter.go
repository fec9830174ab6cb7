package results

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/imagesearch/internal/apperr"
	"github.com/lehigh-university-libraries/imagesearch/internal/json"
	"github.com/lehigh-university-libraries/imagesearch/internal/models"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Write renders records to w in the given format
func Write(w io.Writer, format string, records []models.ImageRecord) error {
	if records == nil {
		records = []models.ImageRecord{}
	}

	switch format {
	case FormatJSON:
		data, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		// jsoniter leaves MarshalJSON output unindented
		var buf bytes.Buffer
		if err := stdjson.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("failed to indent JSON: %w", err)
		}
		buf.WriteByte('\n')
		_, err = buf.WriteTo(w)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	default:
		return apperr.Newf(apperr.KindValidation, "write results", "unknown format %q (want json or yaml)", format)
	}
}

// Read decodes a list of records. YAML is chosen for .yaml/.yml names,
// JSON for everything else.
func Read(r io.Reader, name string) ([]models.ImageRecord, error) {
	var records []models.ImageRecord

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&records); err != nil && err != io.EOF {
			return nil, apperr.New(apperr.KindValidation, "read results", fmt.Errorf("failed to parse YAML: %w", err))
		}
	default:
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, apperr.New(apperr.KindValidation, "read results", fmt.Errorf("failed to parse JSON: %w", err))
		}
	}

	return records, nil
}
