// Package core defines the shared language of covidlens.
//
// This package contains:
//   - Source entities (CaseRecord, VaccinationRecord, PopulationRecord)
//   - The date-keyed Table that every reshape/join stage produces
//   - Named policies for the zero-fill and default-divisor behaviours
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
