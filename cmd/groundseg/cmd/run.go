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
	"os"
	"strconv"
	"strings"

	"github.com/spatialmodel/groundseg"
	"github.com/spf13/cobra"
)

func runE(cc *cobra.Command, args []string) error {
	cfg := groundseg.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = readConfigFile(configFile)
		if err != nil {
			return usageErrorf("%v", err)
		}
	}

	points, err := parsePointsFile(args[0])
	if err != nil {
		return err
	}

	p, err := groundseg.NewPipeline(cfg, nil)
	if err != nil {
		return usageErrorf("%v", err)
	}

	result, err := p.ProcessPointCloud(points)
	if err != nil {
		if groundseg.IsKind(err, groundseg.NumericSingular) {
			return numericError(err)
		}
		return usageErrorf("%v", err)
	}

	printSummary(cc, result)
	return nil
}

// parsePointsFile reads a whitespace-separated list of "x y z" triples.
func parsePointsFile(filename string) ([]groundseg.Point3, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, usageErrorf("the points file you have specified, %v, does not "+
			"appear to exist. Please check the file name and location and try again", filename)
	}
	defer file.Close()

	var fields []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields = append(fields, strings.Fields(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return nil, parseErrorf("problem reading points file: %v", err)
	}
	if len(fields)%3 != 0 {
		return nil, parseErrorf("points file %v has %d whitespace-separated fields, "+
			"which is not a multiple of 3", filename, len(fields))
	}

	points := make([]groundseg.Point3, 0, len(fields)/3)
	for i := 0; i < len(fields); i += 3 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, parseErrorf("field %d (%q) is not a valid number: %v", i, fields[i], err)
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, parseErrorf("field %d (%q) is not a valid number: %v", i+1, fields[i+1], err)
		}
		z, err := strconv.ParseFloat(fields[i+2], 64)
		if err != nil {
			return nil, parseErrorf("field %d (%q) is not a valid number: %v", i+2, fields[i+2], err)
		}
		points = append(points, groundseg.Point3{X: x, Y: y, Z: z})
	}
	return points, nil
}

func printSummary(cc *cobra.Command, r *groundseg.Result) {
	out := cc.OutOrStdout()
	if !r.Valid {
		fmt.Fprintln(out, "groundseg: no points ingested; result is not valid")
		return
	}
	fmt.Fprintf(out, "components: %d\n", len(r.Mixture.Components))
	counts := make(map[int]int)
	for _, l := range r.Labels {
		counts[l]++
	}
	for k := 0; k < len(r.Mixture.Components); k++ {
		fmt.Fprintf(out, "  label %d: %d cells, pi=%.4f, sigma2=%.6g\n",
			k, counts[k], r.Mixture.Components[k].Pi, r.Mixture.Components[k].Sigma2)
	}
	if n := counts[groundseg.UnlabeledVertex]; n > 0 {
		fmt.Fprintf(out, "  unlabeled: %d cells\n", n)
	}
}
