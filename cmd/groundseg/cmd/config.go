/*
Copyright © 2013 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package cmd

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/groundseg"
)

// tomlConfig mirrors groundseg.Config field-for-field so that a
// configuration file only needs to name the fields it overrides; any
// field left out of the file keeps its DefaultConfig value.
type tomlConfig struct {
	MinX, MinY, MaxX, MaxY *float64
	CellDx, CellDy         *float64
	SensorVariance         *float64
	SegmentationK          *float64
	MinComponentSize       *int
	MLMaxIter              *int
	MLTol                  *float64
	Weighted               *bool
	BPMaxIter              *int
	BPTol                  *float64
	LogDomain              *bool
	BPBeta                 *float64
}

// readConfigFile reads and parses a TOML configuration file, applying
// its fields on top of groundseg.DefaultConfig().
func readConfigFile(filename string) (groundseg.Config, error) {
	cfg := groundseg.DefaultConfig()

	file, err := os.Open(filename)
	if err != nil {
		return cfg, fmt.Errorf("the configuration file you have specified, %v, does not "+
			"appear to exist. Please check the file name and location and try again", filename)
	}
	defer file.Close()

	b, err := ioutil.ReadAll(bufio.NewReader(file))
	if err != nil {
		return cfg, fmt.Errorf("problem reading configuration file: %v", err)
	}

	var t tomlConfig
	if _, err := toml.Decode(string(b), &t); err != nil {
		return cfg, fmt.Errorf("there has been an error parsing the configuration file: %v", err)
	}

	applyTOML(&cfg, &t)
	return cfg, nil
}

func applyTOML(cfg *groundseg.Config, t *tomlConfig) {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	set(&cfg.MinX, t.MinX)
	set(&cfg.MinY, t.MinY)
	set(&cfg.MaxX, t.MaxX)
	set(&cfg.MaxY, t.MaxY)
	set(&cfg.CellDx, t.CellDx)
	set(&cfg.CellDy, t.CellDy)
	set(&cfg.SensorVariance, t.SensorVariance)
	set(&cfg.SegmentationK, t.SegmentationK)
	setInt(&cfg.MinComponentSize, t.MinComponentSize)
	setInt(&cfg.MLMaxIter, t.MLMaxIter)
	set(&cfg.MLTol, t.MLTol)
	if t.Weighted != nil {
		cfg.Weighted = *t.Weighted
	}
	setInt(&cfg.BPMaxIter, t.BPMaxIter)
	set(&cfg.BPTol, t.BPTol)
	if t.LogDomain != nil {
		cfg.LogDomain = *t.LogDomain
	}
	set(&cfg.BPBeta, t.BPBeta)
}
