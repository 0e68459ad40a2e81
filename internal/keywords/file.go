package keywords

import (
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/vijay-prabhu/seobrief/internal/opportunity"
)

// File formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

//go:embed schemas/candidates.schema.json
var candidatesSchemaJSON []byte

// candidatesSchema is the compiled schema for JSON and YAML keyword files.
var candidatesSchema = mustCompileSchema(candidatesSchemaJSON, "candidates.schema.json")

var schemaPrinter = message.NewPrinter(language.English)

// SchemaError lists every schema violation found in a keyword file
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "invalid keyword file: " + strings.Join(e.Problems, "; ")
}

func mustCompileSchema(raw []byte, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal(raw, &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// FormatFor returns the file format implied by the path's extension
func FormatFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported keyword file type %q (use .json, .yaml or .csv)", filepath.Ext(path))
	}
}

// LoadFile reads candidates from a JSON, YAML or CSV file. Records that fail
// candidate validation are skipped and returned as the second value.
func LoadFile(path string) ([]opportunity.Candidate, []error, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open keyword file: %w", err)
	}
	defer f.Close()

	return Load(f, format)
}

// Load reads candidates in the given format
func Load(r io.Reader, format string) ([]opportunity.Candidate, []error, error) {
	var (
		records []map[string]any
		err     error
	)

	switch format {
	case FormatJSON:
		records, err = decodeJSON(r)
	case FormatYAML:
		records, err = decodeYAML(r)
	case FormatCSV:
		records, err = decodeCSV(r)
	default:
		return nil, nil, fmt.Errorf("unsupported keyword format %q", format)
	}
	if err != nil {
		return nil, nil, err
	}

	candidates, errs := opportunity.FromRecords(records, SourceFile)
	return candidates, errs, nil
}

func decodeJSON(r io.Reader) ([]map[string]any, error) {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return validatedRecords(doc)
}

func decodeYAML(r io.Reader) ([]map[string]any, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return validatedRecords(doc)
}

// validatedRecords checks a decoded document against the schema and
// extracts its candidate records.
func validatedRecords(doc any) ([]map[string]any, error) {
	if err := candidatesSchema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, fmt.Errorf("schema: %w", err)
		}
		var problems []string
		collectSchemaErrors(ve, &problems)
		return nil, &SchemaError{Problems: problems}
	}

	if obj, ok := doc.(map[string]any); ok {
		doc = obj["keywords"]
	}
	items, _ := doc.([]any)

	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(map[string]any); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(schemaPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// decodeCSV reads a CSV file with a header row. The phrase column may be
// named "keyword" or "text"; empty cells are treated as missing metrics.
func decodeCSV(r io.Reader) ([]map[string]any, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}

	hasPhrase := false
	for _, h := range header {
		if h == "keyword" || h == "text" {
			hasPhrase = true
		}
	}
	if !hasPhrase {
		return nil, errors.New(`CSV header must include a "keyword" column`)
	}

	var records []map[string]any
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		rec := make(map[string]any, len(header))
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			rec[header[i]] = cell
		}
		records = append(records, rec)
	}
	return records, nil
}
