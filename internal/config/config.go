// Package config loads patch files: the nodes a runtime hosts, how they are
// connected and the runtime settings. Patches are YAML or TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/comalice/psl"
	"github.com/comalice/psl/internal/core"
	"github.com/comalice/psl/internal/extensibility"
)

var (
	// ErrUnsupportedFormat is returned for a patch file extension other than
	// .yaml, .yml or .toml.
	ErrUnsupportedFormat = errors.New("unsupported patch format")
	// ErrInvalidPatch wraps every validation failure.
	ErrInvalidPatch = errors.New("invalid patch")
)

// Evaluator names accepted in Patch.Evaluator.
const (
	EvaluatorExpr = "expr"
	EvaluatorLua  = "lua"
)

// Patch describes a runtime and its nodes.
type Patch struct {
	Name           string           `yaml:"name" toml:"name" validate:"required,nodeid"`
	Evaluator      string           `yaml:"evaluator,omitempty" toml:"evaluator,omitempty" validate:"omitempty,oneof=expr lua"`
	MaxStreamCount int              `yaml:"max_stream_count,omitempty" toml:"max_stream_count,omitempty" validate:"gte=0,lte=1048576"`
	QueueSize      int              `yaml:"queue_size,omitempty" toml:"queue_size,omitempty" validate:"gte=0"`
	Nodes          []NodeSpec       `yaml:"nodes" toml:"nodes" validate:"required,min=1,dive"`
	Connections    []ConnectionSpec `yaml:"connections,omitempty" toml:"connections,omitempty" validate:"dive"`
}

// NodeSpec declares one node.
type NodeSpec struct {
	ID       string `yaml:"id" toml:"id" validate:"required,nodeid"`
	Selector string `yaml:"selector" toml:"selector" validate:"required"`
}

// ConnectionSpec routes outputs of From into inlet Inlet of To.
type ConnectionSpec struct {
	From  string `yaml:"from" toml:"from" validate:"required"`
	To    string `yaml:"to" toml:"to" validate:"required"`
	Inlet int    `yaml:"inlet,omitempty" toml:"inlet,omitempty" validate:"gte=0,lt=3"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("nodeid", validateNodeID)
}

// validateNodeID rejects ids the script syntax cannot address.
func validateNodeID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s != "" && !strings.ContainsAny(s, ": \t\r\n#;")
}

// Load reads and validates the patch at path. The format follows the file
// extension.
func Load(path string) (*Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	p, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a patch. ext is ".yaml", ".yml" or ".toml".
func Parse(data []byte, ext string) (*Patch, error) {
	var p Patch
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("yaml unmarshal: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("toml unmarshal: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks field constraints, unique node ids and that every
// connection names declared nodes.
func (p *Patch) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	ids := make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		if ids[n.ID] {
			return fmt.Errorf("%w: duplicate node %q", ErrInvalidPatch, n.ID)
		}
		ids[n.ID] = true
	}
	for _, c := range p.Connections {
		if !ids[c.From] {
			return fmt.Errorf("%w: connection from undeclared node %q", ErrInvalidPatch, c.From)
		}
		if !ids[c.To] {
			return fmt.Errorf("%w: connection to undeclared node %q", ErrInvalidPatch, c.To)
		}
	}
	return nil
}

// Options translates the runtime settings into core options.
func (p *Patch) Options() []core.Option {
	var opts []core.Option
	if p.MaxStreamCount > 0 {
		opts = append(opts, core.WithMaxStreamCount(p.MaxStreamCount))
	}
	if p.QueueSize > 0 {
		opts = append(opts, core.WithQueueSize(p.QueueSize))
	}
	if ev := p.evaluator(); ev != nil {
		opts = append(opts, core.WithEvaluator(ev))
	}
	return opts
}

func (p *Patch) evaluator() psl.Evaluator {
	switch p.Evaluator {
	case EvaluatorLua:
		return extensibility.LuaEvaluator{}
	case EvaluatorExpr:
		return psl.ExprEvaluator{}
	default:
		return nil
	}
}

// Reconcile brings rt in line with the patch. Nodes the patch no longer
// declares are destroyed, nodes whose selector changed are recreated and new
// nodes are created; connections are added and removed to match. Nodes that
// survive keep their primary value and buffer. Runtime settings are not
// changed.
func (p *Patch) Reconcile(rt *core.Runtime) error {
	want := make(map[string]string, len(p.Nodes))
	for _, n := range p.Nodes {
		want[n.ID] = n.Selector
	}
	for _, id := range rt.Nodes() {
		n, ok := rt.Node(id)
		if !ok {
			continue
		}
		if sel, keep := want[id]; !keep || sel != n.Selector() {
			if err := rt.Destroy(id); err != nil {
				return err
			}
		}
	}
	for _, n := range p.Nodes {
		if _, ok := rt.Node(n.ID); ok {
			continue
		}
		if _, err := rt.Create(n.ID, n.Selector); err != nil {
			return err
		}
	}

	wantConns := make(map[core.Connection]bool, len(p.Connections))
	for _, c := range p.Connections {
		wantConns[core.Connection{From: c.From, To: c.To, Inlet: c.Inlet}] = true
	}
	have := make(map[core.Connection]bool)
	for _, c := range rt.Connections() {
		if !wantConns[c] {
			rt.Disconnect(c)
			continue
		}
		have[c] = true
	}
	for _, c := range p.Connections {
		conn := core.Connection{From: c.From, To: c.To, Inlet: c.Inlet}
		if have[conn] {
			continue
		}
		if err := rt.Connect(conn); err != nil {
			return err
		}
		have[conn] = true
	}
	return nil
}

// Build creates a runtime named after the patch with the patch's nodes.
// opts are applied after the patch's own options.
func (p *Patch) Build(opts ...core.Option) (*core.Runtime, error) {
	rt := core.NewRuntime(p.Name, append(p.Options(), opts...)...)
	if err := p.Reconcile(rt); err != nil {
		return nil, err
	}
	return rt, nil
}
