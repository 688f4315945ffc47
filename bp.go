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

package groundseg

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// UnlabeledVertex marks a DEM vertex that belongs to no surviving
// mixture component (an empty cell, or one pruned out of the mixture).
const UnlabeledVertex = -1

// directedEdge identifies a message m_{from->to}.
type directedEdge struct{ from, to int }

// BPMessages holds the converged (or iteration-capped) belief-propagation
// messages over the region graph. If LogDomain is true, Values holds
// log-messages that logsumexp to 0 per directed edge; otherwise Values
// holds linear-domain messages that sum to 1 per directed edge.
type BPMessages struct {
	LogDomain  bool
	Values     map[directedEdge][]float64
	Iterations int
	Converged  bool
}

// bpPotentials precomputes, for a region graph of K surviving mixture
// components, the per-region aggregated log unary potential
// logPhiRegion[u][l] = sum over member DEM cells i of log phi_i(l), and
// the per-vertex log unary potential logPhiCell[i][l] = log phi_i(l),
// both over label l in [0, K).
type bpPotentials struct {
	logPhiRegion [][]float64
	logPhiCell   map[int][]float64 // DEM vertex id -> per-label log potential
}

func computePotentials(mix *Mixture, dem *DEM, componentOf []int) *bpPotentials {
	k := len(mix.Components)
	logPhiRegion := make([][]float64, k)
	for i := range logPhiRegion {
		logPhiRegion[i] = make([]float64, k)
	}
	logPhiCell := make(map[int][]float64)

	logPi := make([]float64, k)
	for l, c := range mix.Components {
		logPi[l] = math.Log(c.Pi)
	}

	for id := range componentOf {
		u := componentOf[id]
		if u == UnlabeledVertex {
			continue
		}
		i, j := dem.IndexOf(id)
		p := dem.CellCenter(i, j)
		z := dem.CellAtIndex(i, j).PosteriorMean()
		cellPot := make([]float64, k)
		for l, c := range mix.Components {
			mean := c.A + c.B*p.X + c.C*p.Y
			cellPot[l] = logPi[l] + gaussianLogPDF(z, mean, c.Sigma2)
			logPhiRegion[u][l] += cellPot[l]
		}
		logPhiCell[id] = cellPot
	}
	return &bpPotentials{logPhiRegion: logPhiRegion, logPhiCell: logPhiCell}
}

// RunBP runs synchronous loopy sum-product belief propagation over the
// region graph, in either linear or log domain per cfg.LogDomain
// (spec.md 4.6). It returns the converged messages and, for every DEM
// vertex, its soft-labeled component index (or UnlabeledVertex for cells
// that belong to no surviving component).
func RunBP(cfg Config, rg *RegionGraph, mix *Mixture, dem *DEM, componentOf []int, logger *logrus.Logger) (*BPMessages, []int, error) {
	const op = "RunBP"
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	k := rg.K
	if k == 0 {
		return &BPMessages{LogDomain: cfg.LogDomain, Values: map[directedEdge][]float64{}},
			allUnlabeled(dem.NumCells()), nil
	}

	pot := computePotentials(mix, dem, componentOf)

	var directed []directedEdge
	for _, e := range rg.Edges {
		directed = append(directed, directedEdge{e.U, e.V}, directedEdge{e.V, e.U})
	}

	cur := initMessages(directed, k, cfg.LogDomain)

	converged := false
	iter := 0
	for ; iter < cfg.BPMaxIter; iter++ {
		next := make(map[directedEdge][]float64, len(directed))
		for _, de := range directed {
			incoming := incomingFrom(rg, de.from, de.to)
			var msg []float64
			if cfg.LogDomain {
				msg = bpUpdateLog(pot.logPhiRegion[de.from], cfg.BPBeta, de.from, incoming, cur)
			} else {
				msg = bpUpdateLinear(pot.logPhiRegion[de.from], cfg.BPBeta, de.from, incoming, cur)
			}
			next[de] = msg
		}
		maxDelta := 0.0
		for _, de := range directed {
			for l := 0; l < k; l++ {
				maxDelta = math.Max(maxDelta, math.Abs(next[de][l]-cur[de][l]))
			}
		}
		cur = next
		if maxDelta < cfg.BPTol {
			converged = true
			iter++
			break
		}
	}
	if !converged {
		logger.WithFields(logrus.Fields{
			"op":         op,
			"iterations": iter,
			"tolerance":  cfg.BPTol,
		}).Warn("groundseg: NONCONVERGENCE: belief propagation hit its iteration cap")
	}

	labels := finalLabeling(rg, pot, cur, componentOf, dem.NumCells(), cfg.LogDomain)
	return &BPMessages{LogDomain: cfg.LogDomain, Values: cur, Iterations: iter, Converged: converged}, labels, nil
}

func initMessages(directed []directedEdge, k int, logDomain bool) map[directedEdge][]float64 {
	cur := make(map[directedEdge][]float64, len(directed))
	for _, de := range directed {
		v := make([]float64, k)
		if !logDomain {
			for l := range v {
				v[l] = 1.0 / float64(k)
			}
		}
		// Log domain messages are initialized to 0, which is already
		// the zero value of v.
		cur[de] = v
	}
	return cur
}

// incomingFrom returns the neighbors of u in the region graph, excluding
// v, whose messages into u feed the outgoing message u->v.
func incomingFrom(rg *RegionGraph, u, v int) []int {
	out := make([]int, 0, len(rg.Adjacency[u]))
	for _, w := range rg.Adjacency[u] {
		if w != v {
			out = append(out, w)
		}
	}
	return out
}

// bpUpdateLinear computes m_{u->v}(l') proportional to
// sum_l Phi_u(l) * psi(l,l') * prod_{w in incoming} m_{w->u}(l), then
// normalizes the result to sum to 1.
func bpUpdateLinear(logPhiU []float64, beta float64, u int, incoming []int, cur map[directedEdge][]float64) []float64 {
	k := len(logPhiU)
	phiU := make([]float64, k)
	for l := range phiU {
		phiU[l] = math.Exp(logPhiU[l])
		for _, w := range incoming {
			phiU[l] *= cur[directedEdge{w, u}][l]
		}
	}
	decay := math.Exp(-beta)
	out := make([]float64, k)
	sum := 0.0
	for lp := 0; lp < k; lp++ {
		acc := 0.0
		for l := 0; l < k; l++ {
			if l == lp {
				acc += phiU[l]
			} else {
				acc += phiU[l] * decay
			}
		}
		out[lp] = acc
		sum += acc
	}
	if sum > 0 {
		for lp := range out {
			out[lp] /= sum
		}
	}
	return out
}

// bpUpdateLog is the log-domain equivalent of bpUpdateLinear: products
// become sums and the label marginalization uses logsumexp.
func bpUpdateLog(logPhiU []float64, beta float64, u int, incoming []int, cur map[directedEdge][]float64) []float64 {
	k := len(logPhiU)
	base := make([]float64, k)
	copy(base, logPhiU)
	for _, w := range incoming {
		msg := cur[directedEdge{w, u}]
		for l := range base {
			base[l] += msg[l]
		}
	}
	out := make([]float64, k)
	terms := make([]float64, k)
	for lp := 0; lp < k; lp++ {
		for l := 0; l < k; l++ {
			if l == lp {
				terms[l] = base[l]
			} else {
				terms[l] = base[l] - beta
			}
		}
		out[lp] = floats.LogSumExp(terms)
	}
	norm := floats.LogSumExp(out)
	for lp := range out {
		out[lp] -= norm
	}
	return out
}

// finalLabeling assigns, for every DEM vertex i belonging to surviving
// region r = componentOf[i], the label maximizing
// phi_i(l) * prod_{w in N(r)} m_{w->r}(l), ties broken by the lowest
// label id (spec.md 4.6).
func finalLabeling(rg *RegionGraph, pot *bpPotentials, messages map[directedEdge][]float64, componentOf []int, numVertices int, logDomain bool) []int {
	labels := make([]int, numVertices)
	for i := range labels {
		labels[i] = UnlabeledVertex
	}
	if rg.K == 0 {
		return labels
	}

	regionScore := make(map[int][]float64) // region -> log score per label, cached across vertices in the same region
	for id, cellPot := range pot.logPhiCell {
		r := componentOf[id]
		score, ok := regionScore[r]
		if !ok {
			score = make([]float64, rg.K)
			for _, w := range rg.Adjacency[r] {
				msg := messages[directedEdge{w, r}]
				if logDomain {
					for l := range score {
						score[l] += msg[l]
					}
				} else {
					for l := range score {
						score[l] += math.Log(msg[l])
					}
				}
			}
			regionScore[r] = score
		}
		best, bestL := math.Inf(-1), 0
		for l := 0; l < rg.K; l++ {
			v := cellPot[l] + score[l]
			if v > best {
				best, bestL = v, l
			}
		}
		labels[id] = bestL
	}
	return labels
}

func allUnlabeled(n int) []int {
	l := make([]int, n)
	for i := range l {
		l[i] = UnlabeledVertex
	}
	return l
}
