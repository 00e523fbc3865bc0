package secret

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

var bracedVar = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// escapedDollar stands in for "$$" while os.ExpandEnv runs.
const escapedDollar = "\x00dollar\x00"

// ExpandEnvStrict expands $VAR and ${VAR} like os.ExpandEnv, except that a
// braced variable missing from the environment is an error. "$$" yields a
// literal "$".
func ExpandEnvStrict(s string) (string, error) {
	s = strings.ReplaceAll(s, "$$", escapedDollar)

	var missing []string
	for _, m := range bracedVar.FindAllStringSubmatch(s, -1) {
		if _, ok := os.LookupEnv(m[1]); !ok {
			missing = append(missing, m[1])
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("missing required environment variables: %s",
			strings.Join(slices.Compact(missing), ", "))
	}

	return strings.ReplaceAll(os.ExpandEnv(s), escapedDollar, "$"), nil
}
