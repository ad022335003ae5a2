package main

import (
        "os"
        "strings"

        "devtour/internal/cli"
)

func isStepID(s string) bool {
        s = strings.TrimSpace(s)
        return strings.HasPrefix(s, "step-") && len(s) > len("step-")
}

// rewriteDirectStepLookupArgs turns `devtour <step-id>` into
// `devtour steps show <step-id>`. Cobra treats the first non-flag token as a
// subcommand, so argv is rewritten before parsing. Persistent flags may come
// first (`devtour --dir ... <step-id>`).
func rewriteDirectStepLookupArgs(argv []string) []string {
        if len(argv) < 2 {
                return argv
        }

        valueFlags := map[string]bool{
                "--dir":    true,
                "--format": true,
        }
        boolFlags := map[string]bool{
                "--pretty":  true,
                "--verbose": true,
                "-v":        true,
        }

        insert := func(i int) []string {
                out := make([]string, 0, len(argv)+2)
                out = append(out, argv[:i]...)
                out = append(out, "steps", "show")
                out = append(out, argv[i:]...)
                return out
        }

        for i := 1; i < len(argv); i++ {
                a := strings.TrimSpace(argv[i])
                if a == "" {
                        continue
                }
                if a == "--" {
                        if i+1 < len(argv) && isStepID(argv[i+1]) {
                                return insert(i + 1)
                        }
                        return argv
                }
                if strings.HasPrefix(a, "-") {
                        if strings.Contains(a, "=") || boolFlags[a] {
                                continue
                        }
                        if valueFlags[a] {
                                i++
                        }
                        continue
                }
                if isStepID(a) {
                        return insert(i)
                }
                return argv
        }
        return argv
}

func main() {
        os.Args = rewriteDirectStepLookupArgs(os.Args)

        cmd := cli.NewRootCmd()
        if err := cmd.Execute(); err != nil {
                os.Exit(1)
        }
}
