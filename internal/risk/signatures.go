package risk

import "regexp"

// Signature pairs a compiled risk expression with its category and the
// weight it contributes during ranking.
type Signature struct {
	Category string
	Pattern  *regexp.Regexp
	Weight   int
}

// Ranking weights per signal class.
const (
	highRiskWeight   = 10
	mediumRiskWeight = 5
)

// keepSignatures is the high-confidence filter table. A chunk matching any
// entry survives the first filter stage; evaluation stops at the first hit,
// so weights are not used here.
var keepSignatures = buildSignatures([]signatureSpec{
	{"credential-assignment", `password\s*[:=]\s*["'][^"']+["']`, 0},
	{"credential-assignment", `api[_-]?key\s*[:=]\s*["'][^"']+["']`, 0},
	{"credential-assignment", `token\s*[:=]\s*["'][^"']+["']`, 0},
	{"credential-assignment", `secret\s*[:=]\s*["'][^"']+["']`, 0},
	{"provider-secret", `STRIPE[_-]?SECRET[_-]?KEY`, 0},
	{"provider-secret", `SENDGRID[_-]?API[_-]?KEY`, 0},
	{"credential-assignment", `"password":\s*"`, 0},
	{"access-rule", `:\s*true\s*[,}]`, 0},
	{"access-rule", `\.read\s*:\s*true`, 0},
	{"access-rule", `\.write\s*:\s*true`, 0},
	{"access-rule", `"\.read":\s*true`, 0},
	{"access-rule", `"\.write":\s*true`, 0},
	{"network-exposure", `0\.0\.0\.0/0`, 0},
	{"network-exposure", `CidrIp:\s*0\.0\.0\.0/0`, 0},
	{"execution", `eval\s*\(`, 0},
	{"execution", `exec\s*\(`, 0},
	{"sql-injection", `SELECT.*\+.*FROM`, 0},
	{"sql-injection", `f["'].*SELECT.*\{.*\}`, 0},
	{"execution", `os\.system\s*\(`, 0},
	{"execution", `subprocess\.call`, 0},
	{"deserialization", `pickle\.loads`, 0},
	{"deserialization", `yaml\.load\s*\(`, 0},
	{"debug-flag", `debug\s*=\s*True`, 0},
	{"cors", `CORS\(.*allow_origins.*\*`, 0},
	{"crypto-key", `ENCRYPTION[_-]?KEY\s*=`, 0},
	{"crypto-key", `SECRET[_-]?KEY\s*=`, 0},
})

// scoreSignatures is the smaller weighted table driving the ranking stage.
// Every match contributes its weight to the chunk's risk score.
var scoreSignatures = buildSignatures([]signatureSpec{
	{"credential-assignment", `password\s*=`, highRiskWeight},
	{"credential-assignment", `api[_-]?key\s*=`, highRiskWeight},
	{"credential-assignment", `secret\s*=`, highRiskWeight},
	{"credential-assignment", `token\s*=`, highRiskWeight},
	{"execution", `eval\s*\(`, highRiskWeight},
	{"execution", `exec\s*\(`, highRiskWeight},
	{"network-exposure", `0\.0\.0\.0/0`, highRiskWeight},
	{"access-rule", `\.read\s*=\s*true`, highRiskWeight},
	{"sql-injection", `SELECT.*\+`, mediumRiskWeight},
	{"sql-injection", `f["'].*\{.*\}`, mediumRiskWeight},
	{"execution", `os\.system`, mediumRiskWeight},
	{"debug-flag", `debug\s*=\s*True`, mediumRiskWeight},
})

// securityKeywords is the broader substring fallback applied when no
// signature matched any chunk of a file.
var securityKeywords = []string{
	"password", "secret", "key", "token", "auth", "permission", "access",
	"config", "stripe", "sendgrid", "api_key", "secret_key", "encryption",
	"0.0.0.0", ".read", ".write", "cidrip", "database", "credentials",
}

// configNameMarkers identify config-shaped files by name for the
// whole-file fallback.
var configNameMarkers = []string{
	"config", "env", "firebase", "aws", ".yml", ".yaml", ".json",
}

type signatureSpec struct {
	category string
	pattern  string
	weight   int
}

// buildSignatures compiles a signature table. All signatures match
// case-insensitively.
func buildSignatures(specs []signatureSpec) []Signature {
	signatures := make([]Signature, 0, len(specs))
	for _, spec := range specs {
		signatures = append(signatures, Signature{
			Category: spec.category,
			Pattern:  regexp.MustCompile(`(?i)` + spec.pattern),
			Weight:   spec.weight,
		})
	}
	return signatures
}
