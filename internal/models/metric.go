package models

// MetricDefinition is one entry of the metrics dictionary.
type MetricDefinition struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}
