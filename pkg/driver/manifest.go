package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"clarity/analysis-go/pkg/analysis"
)

// ManifestFileName is the project file looked up by FindManifest.
const ManifestFileName = "clarity.yml"

// DefaultAnalysisDir is where committed analyses live when the manifest does
// not say otherwise, relative to the manifest.
const DefaultAnalysisDir = ".analysis"

var ErrManifestNotFound = errors.New("clarity.yml not found")

// Manifest represents the parsed contents of clarity.yml.
type Manifest struct {
	Path        string
	Name        string
	Issuer      string
	AnalysisDir string
	Contracts   []*ContractSpec
}

// ContractSpec describes one contract of the project. Local contracts are
// read from Path relative to the manifest; git contracts read Path inside
// the pinned checkout.
type ContractSpec struct {
	Name      string
	Path      string
	DependsOn []string
	Git       string
	Rev       string
	Tag       string
	Branch    string
}

// IsGit reports whether the contract source comes from a git repository.
func (c *ContractSpec) IsGit() bool {
	return c != nil && c.Git != ""
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses clarity.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks from start towards the filesystem root looking for
// clarity.yml.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", ManifestFileName, origin, ErrManifestNotFound)
		}
		dir = parent
	}
}

// Dir is the directory holding the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// AnalysisPath is the absolute directory of the analysis store.
func (m *Manifest) AnalysisPath() string {
	dir := m.AnalysisDir
	if dir == "" {
		dir = DefaultAnalysisDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(m.Dir(), dir)
}

// Contract looks up a contract by name.
func (m *Manifest) Contract(name string) (*ContractSpec, bool) {
	for _, spec := range m.Contracts {
		if spec.Name == name {
			return spec, true
		}
	}
	return nil, false
}

// ContractID is the identity the named contract is checked and stored under.
func (m *Manifest) ContractID(name string) analysis.ContractIdentifier {
	issuer := m.Issuer
	if issuer == "" {
		issuer = analysis.LocalIssuer
	}
	return analysis.ContractIdentifier{Issuer: issuer, Name: name}
}

// HasGitContracts reports whether any contract needs fetching.
func (m *Manifest) HasGitContracts() bool {
	for _, spec := range m.Contracts {
		if spec.IsGit() {
			return true
		}
	}
	return false
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if strings.ContainsAny(m.Issuer, ". \t") {
		errs.Issues = append(errs.Issues, fmt.Sprintf("issuer %q must be a single principal", m.Issuer))
	}
	if len(m.Contracts) == 0 {
		errs.Issues = append(errs.Issues, "contracts must list at least one contract")
	}

	for _, spec := range m.Contracts {
		if !IsValidContractName(spec.Name) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("contracts.%s: invalid contract name", spec.Name))
		}
		for _, issue := range spec.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("contracts.%s: %s", spec.Name, issue))
		}
		for _, dep := range spec.DependsOn {
			switch {
			case dep == spec.Name:
				errs.Issues = append(errs.Issues, fmt.Sprintf("contracts.%s: cannot depend on itself", spec.Name))
			case !m.hasContract(dep):
				errs.Issues = append(errs.Issues, fmt.Sprintf("contracts.%s: depends on unknown contract %q", spec.Name, dep))
			}
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (m *Manifest) hasContract(name string) bool {
	_, ok := m.Contract(name)
	return ok
}

func (c *ContractSpec) validate() []string {
	var errs []string
	if c.Path == "" {
		errs = append(errs, "path must be provided")
	}
	pins := 0
	for _, pin := range []string{c.Rev, c.Tag, c.Branch} {
		if pin != "" {
			pins++
		}
	}
	switch {
	case c.Git == "" && pins > 0:
		errs = append(errs, "rev, tag and branch only apply to git contracts")
	case c.Git != "" && pins == 0:
		errs = append(errs, "git contracts require rev, tag, or branch")
	case pins > 1:
		errs = append(errs, "specify only one of rev, tag, or branch")
	}
	if c.Git == "" && filepath.IsAbs(c.Path) {
		errs = append(errs, "path must be relative to the manifest")
	}
	return errs
}

var contractNamePattern = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9]|[-_])*$`)

// IsValidContractName reports whether name may name a contract.
func IsValidContractName(name string) bool {
	return len(name) <= 128 && contractNamePattern.MatchString(name)
}

type manifestFile struct {
	Name        string      `yaml:"name"`
	Issuer      string      `yaml:"issuer"`
	AnalysisDir string      `yaml:"analysis_dir"`
	Contracts   contractMap `yaml:"contracts"`
}

// contractMap keeps the manifest's contract order, which breaks ties when
// ordering checks.
type contractMap struct {
	items []*ContractSpec
}

func (cm *contractMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		cm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: contracts must be a mapping")
	}
	items := make([]*ContractSpec, 0, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: contract names must be non-empty")
		}
		spec := &ContractSpec{Name: key}
		if err := spec.unmarshalYAML(value.Content[i+1]); err != nil {
			return fmt.Errorf("manifest: contract %q: %w", key, err)
		}
		items = append(items, spec)
	}
	cm.items = items
	return nil
}

// contractFields lists the keys of a contract entry. Node.Decode does not
// inherit the outer decoder's KnownFields setting, so entries are checked
// by hand.
var contractFields = map[string]bool{
	"path":       true,
	"depends_on": true,
	"git":        true,
	"rev":        true,
	"tag":        true,
	"branch":     true,
}

func (c *ContractSpec) unmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		c.Path = strings.TrimSpace(value.Value)
		return nil
	case yaml.MappingNode:
		for i := 0; i < len(value.Content); i += 2 {
			key := value.Content[i].Value
			if !contractFields[key] {
				return fmt.Errorf("line %d: unknown field %q", value.Content[i].Line, key)
			}
		}
		var raw struct {
			Path      string     `yaml:"path"`
			DependsOn stringList `yaml:"depends_on"`
			Git       string     `yaml:"git"`
			Rev       string     `yaml:"rev"`
			Tag       string     `yaml:"tag"`
			Branch    string     `yaml:"branch"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		c.Path = strings.TrimSpace(raw.Path)
		c.DependsOn = raw.DependsOn
		c.Git = strings.TrimSpace(raw.Git)
		c.Rev = strings.TrimSpace(raw.Rev)
		c.Tag = strings.TrimSpace(raw.Tag)
		c.Branch = strings.TrimSpace(raw.Branch)
		return nil
	case yaml.AliasNode:
		return c.unmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected path or mapping, found %s", value.ShortTag())
	}
}

type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			if str = strings.TrimSpace(str); str != "" {
				items = append(items, str)
			}
		}
		*l = stringList(items)
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

func (mf manifestFile) toManifest(path string) *Manifest {
	return &Manifest{
		Path:        path,
		Name:        strings.TrimSpace(mf.Name),
		Issuer:      strings.TrimSpace(mf.Issuer),
		AnalysisDir: strings.TrimSpace(mf.AnalysisDir),
		Contracts:   mf.Contracts.items,
	}
}
