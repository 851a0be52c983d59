package validate

import (
	"math"
	"sort"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
)

// CoverageStatus summarizes one locale against the baseline
type CoverageStatus string

const (
	CoverageComplete   CoverageStatus = "complete"
	CoverageIncomplete CoverageStatus = "incomplete"
	CoverageMissing    CoverageStatus = "missing"
)

// LocaleCoverage is the per-locale result
type LocaleCoverage struct {
	Locale      string         `json:"locale"`
	Status      CoverageStatus `json:"status"`
	Keys        int            `json:"keys"`
	Coverage    float64        `json:"coverage"` // Percent of baseline keys present, one decimal
	MissingKeys []string       `json:"missing_keys,omitempty"`
	ExtraKeys   []string       `json:"extra_keys,omitempty"` // Present here but not in the baseline
}

// CoverageReport compares every locale with the baseline locale
type CoverageReport struct {
	Baseline     string           `json:"baseline"`
	BaselineKeys int              `json:"baseline_keys"`
	Locales      []LocaleCoverage `json:"locales"`
	Score        int              `json:"score"` // Overall percent of baseline keys translated
}

// Complete reports whether every locale has every baseline key
func (r CoverageReport) Complete() bool {
	for _, l := range r.Locales {
		if l.Status != CoverageComplete {
			return false
		}
	}
	return true
}

// Coverage builds a report. Keys are namespace-qualified ("workspace/pos:order.fire")
// so equal dotted keys in different namespaces are counted separately. Locales
// listed in required but absent from catalog are reported as missing.
func Coverage(baseline string, catalog model.Catalog, required []string) CoverageReport {
	base := qualifiedKeys(catalog[baseline])
	report := CoverageReport{
		Baseline:     baseline,
		BaselineKeys: len(base),
	}

	locales := make(map[string]bool)
	for loc := range catalog {
		locales[loc] = true
	}
	for _, loc := range required {
		locales[loc] = true
	}
	names := make([]string, 0, len(locales))
	for loc := range locales {
		names = append(names, loc)
	}
	sort.Strings(names)

	translated := 0
	for _, loc := range names {
		tr, ok := catalog[loc]
		if !ok {
			report.Locales = append(report.Locales, LocaleCoverage{Locale: loc, Status: CoverageMissing})
			continue
		}
		keys := qualifiedKeys(tr)
		lc := LocaleCoverage{Locale: loc, Keys: len(keys)}
		present := 0
		for k := range base {
			if keys[k] {
				present++
			} else {
				lc.MissingKeys = append(lc.MissingKeys, k)
			}
		}
		for k := range keys {
			if !base[k] {
				lc.ExtraKeys = append(lc.ExtraKeys, k)
			}
		}
		sort.Strings(lc.MissingKeys)
		sort.Strings(lc.ExtraKeys)

		if len(base) == 0 {
			lc.Coverage = 100
		} else {
			lc.Coverage = math.Round(float64(present)/float64(len(base))*1000) / 10
		}
		lc.Status = CoverageComplete
		if len(lc.MissingKeys) > 0 {
			lc.Status = CoverageIncomplete
		}
		translated += present
		report.Locales = append(report.Locales, lc)
	}

	total := len(base) * len(names)
	if total == 0 {
		report.Score = 100
	} else {
		report.Score = int(math.Round(float64(translated) / float64(total) * 100))
	}
	return report
}

func qualifiedKeys(tr model.Translations) map[string]bool {
	out := make(map[string]bool)
	for ns, tree := range tr {
		for _, k := range tree.Keys() {
			out[ns+":"+k] = true
		}
	}
	return out
}
