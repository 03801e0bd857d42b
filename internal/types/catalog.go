package types

// CatalogRecord is one package entry of a repository's packages.yaml.
type CatalogRecord struct {
	Name         string   `yaml:"name" json:"name"`
	Version      string   `yaml:"version" json:"version"`
	DownloadSize int64    `yaml:"download_size" json:"download_size"`
	InstallSize  int64    `yaml:"install_size" json:"install_size"`
	Repo         string   `yaml:"repo" json:"repo"`
	LastUpdate   int64    `yaml:"last_update" json:"last_update"`
	Depends      []string `yaml:"depends" json:"depends"`
	MakeDepends  []string `yaml:"make_depends" json:"make_depends"`
	Wanted       bool     `yaml:"wanted" json:"wanted"`
}

// Catalog maps package name to its record. The key is authoritative for
// CatalogRecord.Name.
type Catalog map[string]CatalogRecord

// ReverseIndex maps a package name to the names of the packages that list it
// in their depends.
type ReverseIndex map[string][]string
