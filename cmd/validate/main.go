// Command validate checks a conversion output directory against the
// procedure file contract: file naming, key order, string defaults, flag
// encoding and speed-limit integrality. With -tables it also checks that
// every reference table in the export profile was written.
//
// Usage:
//
//	go run ./cmd/validate -dir Primary -tables
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/navdata-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/navdata-etl/internal/domain"
	"github.com/couchcryptid/navdata-etl/internal/export"
)

var procedureFilePattern = regexp.MustCompile(`^TermID_(\d+)\.json$`)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// procedureFile is one parsed TermID_<id>.json file.
type procedureFile struct {
	name       string
	terminalID int64
	legs       []legRecord
}

// legRecord keeps the raw values of one leg and the order its keys appeared in.
type legRecord struct {
	keys   []string
	values map[string]json.RawMessage
}

func main() {
	dir := flag.String("dir", "", "conversion output directory (contains ProcedureLegs/)")
	tables := flag.Bool("tables", false, "also check the reference table files")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*dir, *tables))
}

func run(dir string, checkTables bool) int {
	fmt.Println("=== Navdata Output Validation ===")
	fmt.Println()

	files, err := loadProcedures(filepath.Join(dir, jsonfile.ProcedureDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load procedures: %v\n", err)
		return 1
	}

	phases := validateProcedures(files)
	if checkTables {
		profile, err := export.DefaultProfile()
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load export profile: %v\n", err)
			return 1
		}
		phases = append(phases, validateTables(dir, profile))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	legs := 0
	for _, f := range files {
		legs += len(f.legs)
	}
	fmt.Println()
	fmt.Printf("Procedures: %d files, %d legs\n", len(files), legs)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadProcedures(dir string) ([]procedureFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []procedureFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		f := procedureFile{name: e.Name(), terminalID: -1}
		if m := procedureFilePattern.FindStringSubmatch(e.Name()); m != nil {
			f.terminalID, _ = strconv.ParseInt(m[1], 10, 64)
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		f.legs, err = parseLegs(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}

func parseLegs(data []byte) ([]legRecord, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	legs := make([]legRecord, 0, len(raw))
	for i, r := range raw {
		keys, err := objectKeys(r)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
		var values map[string]json.RawMessage
		if err := json.Unmarshal(r, &values); err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
		legs = append(legs, legRecord{keys: keys, values: values})
	}
	return legs, nil
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// ── Validation phases ──

func validateProcedures(files []procedureFile) []*phase {
	naming := &phase{name: "File naming and TerminalID agreement"}
	order := &phase{name: "Key order"}
	defaults := &phase{name: "String defaults (Transition, TurnDir, Alt)"}
	flags := &phase{name: "Flag encoding (IsFAF, IsMAP)"}
	speed := &phase{name: "Speed limit integrality"}

	want := strings.Join(domain.FieldOrder, ",")

	for _, f := range files {
		if f.terminalID < 0 {
			naming.errorf("%s: name does not match TermID_<id>.json", f.name)
		}

		for i, leg := range f.legs {
			where := fmt.Sprintf("%s leg %d", f.name, i)

			if f.terminalID >= 0 {
				if tid, ok := intValue(leg.values["TerminalID"]); !ok || tid != f.terminalID {
					naming.errorf("%s: TerminalID %s, want %d", where, leg.values["TerminalID"], f.terminalID)
				}
			}

			if got := strings.Join(leg.keys, ","); got != want {
				order.errorf("%s: keys %s", where, got)
			}

			for _, k := range []string{"Transition", "TurnDir", "Alt"} {
				if !isString(leg.values[k]) {
					defaults.errorf("%s: %s is %s, want a string", where, k, leg.values[k])
				}
			}

			faf, fafOK := intValue(leg.values["IsFAF"])
			isMAP, mapOK := intValue(leg.values["IsMAP"])
			if !fafOK || (faf != 0 && faf != -1) {
				flags.errorf("%s: IsFAF %s", where, leg.values["IsFAF"])
			}
			if !mapOK || (isMAP != 0 && isMAP != -1) {
				flags.errorf("%s: IsMAP %s", where, leg.values["IsMAP"])
			}
			if altIsMAP := string(leg.values["Alt"]) == `"MAP"`; altIsMAP != (isMAP == -1) {
				flags.errorf("%s: IsMAP %d disagrees with Alt %s", where, isMAP, leg.values["Alt"])
			}
			if faf == -1 && (i == 0 || i == len(f.legs)-1) {
				flags.errorf("%s: FAF on first or last leg", where)
			}

			if s := leg.values["SpeedLimit"]; string(s) != "null" {
				if _, ok := intValue(s); !ok {
					speed.errorf("%s: SpeedLimit %s is not an integer", where, s)
				}
			}
		}
	}

	return []*phase{naming, order, defaults, flags, speed}
}

func validateTables(dir string, profile export.Profile) *phase {
	p := &phase{name: "Reference tables"}
	for _, t := range profile.Tables {
		data, err := os.ReadFile(filepath.Join(dir, t.Name+".json"))
		if err != nil {
			p.errorf("%s: %v", t.Name, err)
			continue
		}
		var rows []json.RawMessage
		if err := json.Unmarshal(data, &rows); err != nil {
			p.errorf("%s: not a JSON array: %v", t.Name, err)
			continue
		}
		var allowed map[string]bool
		if len(t.Columns) > 0 {
			allowed = make(map[string]bool, len(t.Columns))
			for _, c := range t.Columns {
				allowed[c] = true
			}
		}
		forbidden := map[string]bool{"Longtitude": true}
		for _, c := range t.Drop {
			forbidden[c] = true
		}
		for i, r := range rows {
			keys, err := objectKeys(r)
			if err != nil {
				p.errorf("%s row %d: %v", t.Name, i, err)
				continue
			}
			for _, k := range keys {
				if forbidden[k] || (allowed != nil && !allowed[k]) {
					p.errorf("%s row %d: unexpected column %s", t.Name, i, k)
				}
			}
		}
	}
	return p
}

// ── Helpers ──

// intValue parses a JSON integer literal; reals such as 1.0 are rejected.
func intValue(raw json.RawMessage) (int64, bool) {
	n, err := strconv.ParseInt(string(raw), 10, 64)
	return n, err == nil
}

func isString(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '"'
}
