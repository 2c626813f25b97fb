package payroll

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type adjustmentsFile struct {
	Installers map[string]installerAdjustments `yaml:"installers"`
}

type installerAdjustments struct {
	Jobs             []jobAdjustment `yaml:"jobs"`
	Extras           []extraEntry    `yaml:"extras"`
	BackCharge       float64         `yaml:"back_charge"`
	BackChargeReason string          `yaml:"back_charge_reason"`
}

type jobAdjustment struct {
	Row      int      `yaml:"row"`
	Labor    *float64 `yaml:"labor"`
	Expenses *float64 `yaml:"expenses"`
}

type extraEntry struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
	Date  string  `yaml:"date"`
}

// LoadAdjustments reads an adjustments file into a new session
func LoadAdjustments(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open adjustments: %w", err)
	}
	defer f.Close()

	return DecodeAdjustments(f)
}

// DecodeAdjustments parses adjustments YAML. Installer keys are canonicalized.
func DecodeAdjustments(r io.Reader) (*Session, error) {
	var af adjustmentsFile
	if err := yaml.NewDecoder(r).Decode(&af); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse adjustments: %w", err)
	}

	session := NewSession()
	seen := make(map[string]string, len(af.Installers))
	for installer, in := range af.Installers {
		if err := checkDistinct(seen, installer); err != nil {
			return nil, fmt.Errorf("adjustments: %w", err)
		}
		adj := session.For(installer)

		for _, job := range in.Jobs {
			if job.Row <= 0 {
				return nil, fmt.Errorf("%s: job adjustment needs a spreadsheet row number", installer)
			}
			if job.Labor != nil {
				adj.SetLabor(job.Row, decimal.NewFromFloat(*job.Labor))
			}
			if job.Expenses != nil {
				adj.SetExpenses(job.Row, decimal.NewFromFloat(*job.Expenses))
			}
		}

		for i, extra := range in.Extras {
			var date time.Time
			if extra.Date != "" {
				d, err := time.Parse("2006-01-02", extra.Date)
				if err != nil {
					return nil, fmt.Errorf("%s: extra #%d: invalid date %q: %w", installer, i+1, extra.Date, err)
				}
				date = d
			}
			adj.AddExtra(extra.Name, decimal.NewFromFloat(extra.Value), date)
		}

		adj.SetBackCharge(decimal.NewFromFloat(in.BackCharge), in.BackChargeReason)
	}

	return session, nil
}
