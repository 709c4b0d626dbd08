// Package version хранит сведения о сборке storefront.
package version

import "fmt"

// Значения подставляются при сборке через -ldflags "-X ...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Current возвращает версию сборки; её отдаёт /healthz.
func Current() string { return version }

// String описывает сборку одной строкой для стартового лога.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}
