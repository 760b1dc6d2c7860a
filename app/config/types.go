package config

// Configuration types
//
// A configuration document is an ordered sequence of entries. A data entry
// describes one remote calendar source; a meta entry (one carrying the
// "conf" key) describes inheritance from a base document instead.

type Entry struct {
	URL      string      `yaml:"url"`
	Name     string      `yaml:"name"`
	Encoding string      `yaml:"encoding"`
	Cache    int         `yaml:"cache"` // minutes; zero means "always fetch live"
	Filters  *FilterSpec `yaml:"filters"`
	Modify   *ModifySpec `yaml:"modify"`
}

// Cached reports whether the entry is served from the artifact cache.
func (e Entry) Cached() bool {
	return e.Cache != 0
}

type FilterSpec struct {
	Name        *FieldFilter `yaml:"name"`
	Description *FieldFilter `yaml:"description"`
}

// FieldFilter holds at most one of Exclude or IncludeOnly; having both is a
// configuration error.
type FieldFilter struct {
	Exclude     *string `yaml:"exclude"`
	IncludeOnly *string `yaml:"includeOnly"`
	IgnoreCase  bool    `yaml:"ignoreCase"`
}

type ModifySpec struct {
	Time        *TimeModify `yaml:"time"`
	Name        *TextEdit   `yaml:"name"`
	Description *TextEdit   `yaml:"description"`
	Location    *TextEdit   `yaml:"location"`
}

type TimeModify struct {
	Shift *TimeShift `yaml:"shift"`
}

// TimeShift is converted to a single signed minute offset using 365-day
// years and 30-day months.
type TimeShift struct {
	Year   int `yaml:"year"`
	Month  int `yaml:"month"`
	Day    int `yaml:"day"`
	Hour   int `yaml:"hour"`
	Minute int `yaml:"minute"`
}

// Minutes returns the total shift as a signed minute offset.
func (s TimeShift) Minutes() int {
	return s.Year*525600 + s.Month*43200 + s.Day*1440 + s.Hour*60 + s.Minute
}

// TextEdit mutates one text field of every event. Prefix and suffix apply
// independently; RedactAs is evaluated last and replaces the field outright.
type TextEdit struct {
	AddPrefix *string `yaml:"addPrefix"`
	AddSuffix *string `yaml:"addSuffix"`
	RedactAs  *string `yaml:"redactAs"`
}
