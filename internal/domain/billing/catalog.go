package billing

import "fmt"

// Clinical credential levels, lowest to highest. A code with MinCredential X
// is billable by X and everything above it.
const (
	CredentialRN = "RN"
	CredentialNP = "NP"
	CredentialMD = "MD"
)

var credentialRank = map[string]int{
	CredentialRN: 1,
	CredentialNP: 2,
	CredentialMD: 3,
}

// Catalogue is the fixed set of billable wound-care procedure codes. The set
// and its credential floors are part of the product, not site configuration.
var Catalogue = []ProcedureCode{
	{Code: "97597", Description: "Debridement, open wound, first 20 sq cm", MinCredential: CredentialRN},
	{Code: "97598", Description: "Debridement, open wound, each additional 20 sq cm", MinCredential: CredentialRN},
	{Code: "97602", Description: "Non-selective debridement", MinCredential: CredentialRN},
	{Code: "97605", Description: "Negative pressure wound therapy, <= 50 sq cm", MinCredential: CredentialRN},
	{Code: "97606", Description: "Negative pressure wound therapy, > 50 sq cm", MinCredential: CredentialRN},
	{Code: "29580", Description: "Unna boot application", MinCredential: CredentialRN},
	{Code: "29581", Description: "Multi-layer compression system, below knee", MinCredential: CredentialRN},
	{Code: "99203", Description: "Office visit, new patient, low complexity", MinCredential: CredentialNP},
	{Code: "99204", Description: "Office visit, new patient, moderate complexity", MinCredential: CredentialNP},
	{Code: "99213", Description: "Office visit, established patient, low complexity", MinCredential: CredentialNP},
	{Code: "99214", Description: "Office visit, established patient, moderate complexity", MinCredential: CredentialNP},
	{Code: "11042", Description: "Surgical debridement, subcutaneous tissue, first 20 sq cm", MinCredential: CredentialMD},
	{Code: "11043", Description: "Surgical debridement, muscle and/or fascia, first 20 sq cm", MinCredential: CredentialMD},
	{Code: "11044", Description: "Surgical debridement, bone, first 20 sq cm", MinCredential: CredentialMD},
	{Code: "15271", Description: "Skin substitute graft application, <= 25 sq cm", MinCredential: CredentialMD},
}

// ValidCredential reports whether the credential is a known clinical level.
func ValidCredential(credential string) bool {
	_, ok := credentialRank[credential]
	return ok
}

// Lookup finds a catalogue entry by code.
func Lookup(code string) (ProcedureCode, bool) {
	for _, p := range Catalogue {
		if p.Code == code {
			return p, true
		}
	}
	return ProcedureCode{}, false
}

// RequiredCredential returns the credential floor for a code, or an error for
// a code outside the catalogue.
func RequiredCredential(code string) (string, error) {
	p, ok := Lookup(code)
	if !ok {
		return "", fmt.Errorf("unknown procedure code: %s", code)
	}
	return p.MinCredential, nil
}

// IsRestricted reports whether the credential is below the code's floor.
// Unknown codes and unknown credentials are both restricted.
func IsRestricted(code, credential string) bool {
	p, ok := Lookup(code)
	if !ok {
		return true
	}
	return credentialRank[credential] < credentialRank[p.MinCredential]
}

// AllowedCodes lists the catalogue entries billable at the given credential,
// in catalogue order.
func AllowedCodes(credential string) []ProcedureCode {
	var out []ProcedureCode
	for _, p := range Catalogue {
		if !IsRestricted(p.Code, credential) {
			out = append(out, p)
		}
	}
	return out
}

// RestrictedCodes lists the catalogue entries NOT billable at the given
// credential. Shown greyed out rather than hidden, so the user can see what a
// higher credential would unlock.
func RestrictedCodes(credential string) []ProcedureCode {
	var out []ProcedureCode
	for _, p := range Catalogue {
		if IsRestricted(p.Code, credential) {
			out = append(out, p)
		}
	}
	return out
}

// CheckCode is the authoritative gate run before a billing line is persisted.
// The rejection names the credential the code requires.
func CheckCode(code, credential string) error {
	p, ok := Lookup(code)
	if !ok {
		return fmt.Errorf("unknown procedure code: %s", code)
	}
	if !ValidCredential(credential) {
		return fmt.Errorf("unknown credential: %q", credential)
	}
	if credentialRank[credential] < credentialRank[p.MinCredential] {
		return fmt.Errorf("code %s requires credential %s or above, caller holds %s",
			p.Code, p.MinCredential, credential)
	}
	return nil
}
