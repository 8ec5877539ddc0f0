package analysis

import (
	"fmt"
	"strings"
)

// LocalIssuer owns contracts referenced by bare name.
const LocalIssuer = "S1G2081040G2081040G2081040G208105NK8PE5"

const transientName = "__transient"

// ContractIdentifier is the globally unique key of a contract.
type ContractIdentifier struct {
	Issuer string
	Name   string
}

func LocalContract(name string) ContractIdentifier {
	return ContractIdentifier{Issuer: LocalIssuer, Name: name}
}

// TransientContract names the throwaway contract used for in-memory checks.
func TransientContract() ContractIdentifier {
	return ContractIdentifier{Issuer: LocalIssuer, Name: transientName}
}

func (id ContractIdentifier) IsTransient() bool {
	return id.Name == transientName
}

func (id ContractIdentifier) String() string {
	return id.Issuer + "." + id.Name
}

// ParseContractIdentifier accepts `issuer.name` or a bare `name`, which is
// resolved against LocalIssuer.
func ParseContractIdentifier(text string) (ContractIdentifier, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ContractIdentifier{}, fmt.Errorf("analysis: empty contract identifier")
	}
	issuer, name, found := strings.Cut(text, ".")
	if !found {
		return LocalContract(text), nil
	}
	if issuer == "" || name == "" || strings.Contains(name, ".") {
		return ContractIdentifier{}, fmt.Errorf("analysis: malformed contract identifier %q", text)
	}
	return ContractIdentifier{Issuer: issuer, Name: name}, nil
}
