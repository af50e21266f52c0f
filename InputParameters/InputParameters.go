package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type PoissonParameters struct {
	Title           string  `yaml:"Title"`
	Nr              int     `yaml:"Nr"`
	Ntheta          int     `yaml:"Ntheta"`
	Nphi            int     `yaml:"Nphi"`
	ProcTheta       int     `yaml:"ProcTheta"`
	ProcPhi         int     `yaml:"ProcPhi"`
	RMax            float64 `yaml:"RMax"`
	StretchRatio    float64 `yaml:"StretchRatio"` // zone-to-zone radial width ratio, 1 = uniform
	Case            string  `yaml:"Case"`         // zero, point-mass, monopole-shell, quadrupole-shell
	ShellFraction   float64 `yaml:"ShellFraction"`
	SourceAmplitude float64 `yaml:"SourceAmplitude"`
}

func DefaultParameters() *PoissonParameters {
	return &PoissonParameters{
		Title:           "spherical Poisson solve",
		Nr:              32,
		Ntheta:          16,
		Nphi:            16,
		ProcTheta:       1,
		ProcPhi:         1,
		RMax:            1,
		StretchRatio:    1,
		Case:            "monopole-shell",
		ShellFraction:   0.5,
		SourceAmplitude: 1,
	}
}

func (ip *PoissonParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *PoissonParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d %d %d]\t\t= Nr, Ntheta, Nphi\n", ip.Nr, ip.Ntheta, ip.Nphi)
	fmt.Printf("[%d x %d]\t\t= Process grid (theta x phi)\n", ip.ProcTheta, ip.ProcPhi)
	fmt.Printf("%8.5f\t\t= RMax\n", ip.RMax)
	fmt.Printf("%8.5f\t\t= StretchRatio\n", ip.StretchRatio)
	fmt.Printf("[%s]\t\t= Case\n", ip.Case)
	fmt.Printf("%8.5f\t\t= ShellFraction\n", ip.ShellFraction)
	fmt.Printf("%8.5f\t\t= SourceAmplitude\n", ip.SourceAmplitude)
}
