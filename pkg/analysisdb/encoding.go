package analysisdb

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"clarity/analysis-go/pkg/analysis"
)

type analysisDisk struct {
	Contract           string           `yaml:"contract"`
	SourceDigest       string           `yaml:"source_digest,omitempty"`
	Dependencies       []dependencyDisk `yaml:"dependencies,omitempty"`
	PrivateFunctions   []functionDisk   `yaml:"private_functions,omitempty"`
	PublicFunctions    []functionDisk   `yaml:"public_functions,omitempty"`
	ReadOnlyFunctions  []functionDisk   `yaml:"read_only_functions,omitempty"`
	Maps               []mapDisk        `yaml:"maps,omitempty"`
	PersistedVariables []typedNameDisk  `yaml:"persisted_variables,omitempty"`
	Constants          []typedNameDisk  `yaml:"constants,omitempty"`
}

type dependencyDisk struct {
	Contract     string `yaml:"contract"`
	SourceDigest string `yaml:"source_digest"`
}

type functionDisk struct {
	Name    string          `yaml:"name"`
	Args    []typedNameDisk `yaml:"args,omitempty"`
	Returns string          `yaml:"returns"`
}

type mapDisk struct {
	Name  string `yaml:"name"`
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type typedNameDisk struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// EncodeYAML writes the analysis as a YAML document. Signatures are stored
// in their source syntax and namespaces are sorted by name.
func EncodeYAML(w io.Writer, a *analysis.ContractAnalysis) error {
	if a == nil {
		return fmt.Errorf("analysisdb: encode nil analysis")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toDisk(a)); err != nil {
		return fmt.Errorf("analysisdb: marshal %s: %w", a.ContractID, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("analysisdb: encoder close: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// DecodeYAML reads a document produced by EncodeYAML.
func DecodeYAML(r io.Reader) (*analysis.ContractAnalysis, error) {
	var raw analysisDisk
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("analysisdb: parse: %w", err)
	}
	return raw.toAnalysis()
}

func toDisk(a *analysis.ContractAnalysis) analysisDisk {
	out := analysisDisk{
		Contract:          a.ContractID.String(),
		SourceDigest:      a.SourceDigest,
		PrivateFunctions:  functionsToDisk(a.PrivateFunctions),
		PublicFunctions:   functionsToDisk(a.PublicFunctions),
		ReadOnlyFunctions: functionsToDisk(a.ReadOnlyFunctions),
	}
	for _, contract := range analysis.SortedNames(a.DependencyDigests) {
		out.Dependencies = append(out.Dependencies, dependencyDisk{Contract: contract, SourceDigest: a.DependencyDigests[contract]})
	}
	for _, name := range analysis.SortedNames(a.Maps) {
		sig := a.Maps[name]
		out.Maps = append(out.Maps, mapDisk{Name: name, Key: sig.Key.String(), Value: sig.Value.String()})
	}
	for _, name := range analysis.SortedNames(a.PersistedVariables) {
		out.PersistedVariables = append(out.PersistedVariables, typedNameDisk{Name: name, Type: a.PersistedVariables[name].String()})
	}
	for _, name := range analysis.SortedNames(a.Constants) {
		out.Constants = append(out.Constants, typedNameDisk{Name: name, Type: a.Constants[name].String()})
	}
	return out
}

func functionsToDisk(fns map[string]analysis.FixedFunction) []functionDisk {
	var out []functionDisk
	for _, name := range analysis.SortedNames(fns) {
		fn := fns[name]
		entry := functionDisk{Name: name, Returns: signatureText(fn.Returns)}
		for _, arg := range fn.Args {
			entry.Args = append(entry.Args, typedNameDisk{Name: arg.Name, Type: signatureText(arg.Type)})
		}
		out = append(out, entry)
	}
	return out
}

func signatureText(t analysis.TypeSignature) string {
	if t == nil {
		return analysis.None.String()
	}
	return t.String()
}

func (d analysisDisk) toAnalysis() (*analysis.ContractAnalysis, error) {
	id, err := analysis.ParseContractIdentifier(d.Contract)
	if err != nil {
		return nil, err
	}
	out := analysis.NewContractAnalysis(id)
	out.SourceDigest = d.SourceDigest
	if len(d.Dependencies) > 0 {
		out.DependencyDigests = make(map[string]string, len(d.Dependencies))
		for _, dep := range d.Dependencies {
			out.DependencyDigests[dep.Contract] = dep.SourceDigest
		}
	}
	groups := []struct {
		entries []functionDisk
		into    map[string]analysis.FixedFunction
	}{
		{d.PrivateFunctions, out.PrivateFunctions},
		{d.PublicFunctions, out.PublicFunctions},
		{d.ReadOnlyFunctions, out.ReadOnlyFunctions},
	}
	for _, group := range groups {
		for _, entry := range group.entries {
			fn, err := entry.toFunction()
			if err != nil {
				return nil, err
			}
			group.into[entry.Name] = fn
		}
	}
	for _, entry := range d.Maps {
		key, err := decodeTuple(entry.Key)
		if err != nil {
			return nil, err
		}
		value, err := decodeTuple(entry.Value)
		if err != nil {
			return nil, err
		}
		out.Maps[entry.Name] = analysis.MapSignature{Key: key, Value: value}
	}
	for _, entry := range d.PersistedVariables {
		sig, err := analysis.ParseStoredType(entry.Type)
		if err != nil {
			return nil, err
		}
		out.PersistedVariables[entry.Name] = sig
	}
	for _, entry := range d.Constants {
		sig, err := analysis.ParseStoredType(entry.Type)
		if err != nil {
			return nil, err
		}
		out.Constants[entry.Name] = sig
	}
	return out, nil
}

func (f functionDisk) toFunction() (analysis.FixedFunction, error) {
	returns, err := analysis.ParseStoredType(f.Returns)
	if err != nil {
		return analysis.FixedFunction{}, err
	}
	fn := analysis.FixedFunction{Returns: returns}
	for _, arg := range f.Args {
		sig, err := analysis.ParseStoredType(arg.Type)
		if err != nil {
			return analysis.FixedFunction{}, err
		}
		fn.Args = append(fn.Args, analysis.FunctionArg{Name: arg.Name, Type: sig})
	}
	return fn, nil
}

func decodeTuple(text string) (analysis.TupleType, error) {
	sig, err := analysis.ParseStoredType(text)
	if err != nil {
		return analysis.TupleType{}, err
	}
	tuple, ok := sig.(analysis.TupleType)
	if !ok {
		return analysis.TupleType{}, fmt.Errorf("analysisdb: map schema %q is not a tuple", text)
	}
	return tuple, nil
}
