package metadata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/querysql"
)

// CompileError is a metadata error with its CUE source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load compiles every .cue file of a directory.
func Load(dir string) (*Configuration, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("metadata directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("metadata directory: not a directory: %s", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, fmt.Errorf("scan metadata directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, errors.New("no CUE instances loaded")
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("load CUE files: %w", inst.Err)
	}

	return Compile(cuecontext.New().BuildInstance(inst))
}

// CompileString compiles inline CUE source.
func CompileString(src string) (*Configuration, error) {
	return Compile(cuecontext.New().CompileString(src))
}

// Compile converts a CUE value to a Configuration. All problems are
// collected; the returned error joins one *CompileError per problem.
func Compile(v cue.Value) (*Configuration, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	c := &compiler{cfg: newConfiguration()}
	c.constants(v.LookupPath(cue.ParsePath("constants")))
	c.registers(v.LookupPath(cue.ParsePath("registers")))
	c.documents(v.LookupPath(cue.ParsePath("documents")))
	c.directories(v.LookupPath(cue.ParsePath("directories")))
	c.journals(v.LookupPath(cue.ParsePath("journals")))

	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}
	if len(c.cfg.tables) == 0 {
		return nil, &CompileError{Field: "metadata", Message: "no tables declared", Pos: v.Pos()}
	}
	return c.cfg, nil
}

// Errors splits an error returned by Compile into its parts.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}

var reservedColumns = []string{
	querysql.IDColumn,
	ColumnPeriod, ColumnOwner, ColumnOwnerType,
	querysql.DocName, querysql.DocNumber, querysql.DocDate,
	querysql.DocDeletionLabel, querysql.DocSpend, querysql.DocSpendDate,
}

type compiler struct {
	cfg  *Configuration
	errs []error
}

func (c *compiler) fail(fieldName string, pos token.Pos, format string, args ...any) {
	c.errs = append(c.errs, &CompileError{Field: fieldName, Message: fmt.Sprintf(format, args...), Pos: pos})
}

// each calls fn for every regular field of a struct value.
func (c *compiler) each(v cue.Value, path string, fn func(label string, v cue.Value)) {
	if !v.Exists() {
		return
	}
	iter, err := v.Fields()
	if err != nil {
		c.fail(path, v.Pos(), "must be a struct: %v", err)
		return
	}
	for iter.Next() {
		fn(iter.Selector().Unquoted(), iter.Value())
	}
}

func (c *compiler) constants(v cue.Value) {
	c.each(v, "constants", func(block string, bv cue.Value) {
		c.each(bv.LookupPath(cue.ParsePath("tableParts")), "constants."+block+".tableParts", func(part string, pv cue.Value) {
			entity := block + "." + part
			table, ok := c.requiredString(pv, "table", "constants."+entity)
			if !ok {
				return
			}
			c.addTable(pv, TableDef{
				Name:    table,
				Kind:    KindConstantsTablePart,
				Entity:  entity,
				Columns: c.columns(pv, "constants."+entity),
			})
		})
	})
}

func (c *compiler) registers(v cue.Value) {
	c.each(v, "registers", func(name string, rv cue.Value) {
		path := "registers." + name
		def := RegisterDef{Name: name}
		def.Object, _ = c.optionalString(rv, "object", path)
		def.Records, _ = c.optionalString(rv, "records", path)
		if def.Object == "" && def.Records == "" {
			c.fail(path, rv.Pos(), "register needs an object table, a records table or both")
			return
		}
		columns := c.columns(rv, path)
		if def.Object != "" {
			c.addTable(rv, TableDef{Name: def.Object, Kind: KindRegisterObject, Entity: name, Columns: columns})
		}
		if def.Records != "" {
			c.addTable(rv, TableDef{Name: def.Records, Kind: KindRegisterRecords, Entity: name, Columns: slices.Clone(columns)})
		}
		c.cfg.registers[name] = def
	})
}

func (c *compiler) documents(v cue.Value) {
	c.each(v, "documents", func(name string, dv cue.Value) {
		path := "documents." + name
		table, ok := c.requiredString(dv, "table", path)
		if !ok {
			return
		}
		c.addTable(dv, TableDef{Name: table, Kind: KindDocument, Entity: name, Columns: c.columns(dv, path)})
		c.cfg.documents[name] = DocumentDef{Name: name, Table: table}
	})
}

func (c *compiler) directories(v cue.Value) {
	c.each(v, "directories", func(name string, dv cue.Value) {
		path := "directories." + name
		table, ok := c.requiredString(dv, "table", path)
		if !ok {
			return
		}
		def := TableDef{Name: table, Kind: KindDirectory, Entity: name, Columns: c.columns(dv, path)}
		presentation, _ := c.optionalString(dv, "presentation", path)
		if presentation != "" {
			col, found := def.Column(presentation)
			switch {
			case !found:
				c.fail(path+".presentation", dv.Pos(), "unknown field %q", presentation)
			case col.Kind != field.KindText:
				c.fail(path+".presentation", dv.Pos(), "field %q must be text, got %s", presentation, col.Kind)
			}
		}
		def.Presentation = presentation
		c.addTable(dv, def)
		c.cfg.directories[name] = DirectoryDef{Name: name, Table: table, Presentation: presentation}
	})
}

// journals runs last so document references can be resolved.
func (c *compiler) journals(v cue.Value) {
	c.each(v, "journals", func(name string, jv cue.Value) {
		path := "journals." + name
		dv := jv.LookupPath(cue.ParsePath("documents"))
		if !dv.Exists() {
			c.fail(path+".documents", jv.Pos(), "documents is required")
			return
		}
		list, err := dv.List()
		if err != nil {
			c.fail(path+".documents", dv.Pos(), "must be a list of document names")
			return
		}
		def := JournalDef{Name: name}
		for list.Next() {
			docName, err := list.Value().String()
			if err != nil {
				c.fail(path+".documents", list.Value().Pos(), "must be a list of document names")
				continue
			}
			doc, ok := c.cfg.documents[docName]
			if !ok {
				c.fail(path+".documents", list.Value().Pos(), "unknown document %q", docName)
				continue
			}
			def.Documents = append(def.Documents, doc)
		}
		if len(def.Documents) == 0 {
			c.fail(path+".documents", dv.Pos(), "journal needs at least one document")
			return
		}
		c.cfg.journals[name] = def
	})
}

func (c *compiler) columns(v cue.Value, path string) []Column {
	var columns []Column
	c.each(v.LookupPath(cue.ParsePath("fields")), path+".fields", func(name string, fv cue.Value) {
		fpath := path + ".fields." + name
		if err := querysql.CheckIdentifier(name); err != nil {
			c.fail(fpath, fv.Pos(), "%v", err)
			return
		}
		if slices.Contains(reservedColumns, name) {
			c.fail(fpath, fv.Pos(), "field name %q is reserved", name)
			return
		}
		s, err := fv.String()
		if err != nil {
			c.fail(fpath, fv.Pos(), "field kind must be a string")
			return
		}
		kind, err := field.ParseKind(s)
		if err != nil {
			c.fail(fpath, fv.Pos(), "%v", err)
			return
		}
		columns = append(columns, Column{Name: name, Kind: kind})
	})
	return columns
}

func (c *compiler) addTable(v cue.Value, def TableDef) {
	if err := querysql.CheckIdentifier(def.Name); err != nil {
		c.fail(def.Entity+".table", v.Pos(), "%v", err)
		return
	}
	if prev, dup := c.cfg.tables[def.Name]; dup {
		c.fail(def.Entity+".table", v.Pos(), "table %q already declared by %s", def.Name, prev.Entity)
		return
	}
	c.cfg.tables[def.Name] = def
}

func (c *compiler) requiredString(v cue.Value, name, path string) (string, bool) {
	before := len(c.errs)
	s, found := c.optionalString(v, name, path)
	if len(c.errs) > before {
		return "", false
	}
	if !found {
		c.fail(path+"."+name, v.Pos(), "%s is required", name)
		return "", false
	}
	if s == "" {
		c.fail(path+"."+name, v.Pos(), "%s must not be empty", name)
		return "", false
	}
	return s, true
}

func (c *compiler) optionalString(v cue.Value, name, path string) (string, bool) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return "", false
	}
	s, err := fv.String()
	if err != nil {
		c.fail(path+"."+name, fv.Pos(), "%s must be a string", name)
		return "", true
	}
	return s, true
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}
