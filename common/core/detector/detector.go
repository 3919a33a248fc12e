// Package detector implements the pure sandwich-pattern analyzer: given a
// sealed Batch it returns the set of confirmed Findings. It performs no
// I/O and holds no mutable state across calls.
package detector

import (
	"math/big"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/devansh0703/mev-bot-detector/common/models"
)

type Detector struct {
	decoder *decoder
}

func New() (*Detector, error) {
	d, err := newDecoder()
	if err != nil {
		return nil, err
	}
	return &Detector{decoder: d}, nil
}

// candidate pairs a triple with its frontrun's batch position, the global
// tie-break key used once every pool group's candidates are gathered.
type candidate struct {
	finding     models.Finding
	frontrunPos int
}

// Detect is the analytical core. Pure function from Batch to the set of
// sandwich Findings it contains; deterministic, no suspension points.
//
// groupByPool's result is a map, whose iteration order Go randomizes on
// every range. Candidates are therefore collected from every pool group
// first, with only within-group exclusivity applied during that scan;
// the cross-group "attacker appears in at most one Finding per batch"
// rule is resolved afterward in a single pass ordered by frontrun
// position, so the winning triple for an attacker with candidates in two
// different pools never depends on map iteration order.
func (det *Detector) Detect(batch models.Batch) []models.Finding {
	intents := det.decodePass(batch)
	groups := groupByPool(intents)

	candidates := make([]candidate, 0)
	for _, group := range groups {
		candidates = append(candidates, scanGroup(group)...)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].frontrunPos < candidates[j].frontrunPos
	})

	return resolveExclusivity(candidates)
}

// resolveExclusivity applies the "at most one Finding per attacker per
// batch" invariant across the full candidate set. candidates must already
// be sorted by frontrunPos ascending so the earliest candidate for a
// given attacker wins regardless of which pool group produced it.
func resolveExclusivity(candidates []candidate) []models.Finding {
	findings := make([]models.Finding, 0, len(candidates))
	claimedAttackers := mapset.NewSet[common.Address]()

	for _, c := range candidates {
		if claimedAttackers.Contains(c.finding.AttackerAddress) {
			continue
		}
		claimedAttackers.Add(c.finding.AttackerAddress)
		findings = append(findings, c.finding)
	}

	return findings
}

// decodePass derives a SwapIntent for every Transaction that decodes
// against the known swap-method selector table, preserving arrival order.
func (det *Detector) decodePass(batch models.Batch) []models.SwapIntent {
	intents := make([]models.SwapIntent, 0, len(batch.Transactions))
	for i, tx := range batch.Transactions {
		intent, err := det.decoder.decodeSwap(tx, i)
		if err != nil || intent == nil {
			continue
		}
		intents = append(intents, *intent)
	}
	return intents
}

func groupByPool(intents []models.SwapIntent) map[models.PoolID][]models.SwapIntent {
	groups := make(map[models.PoolID][]models.SwapIntent)
	for _, intent := range intents {
		groups[intent.Pool] = append(groups[intent.Pool], intent)
	}
	return groups
}

// scanGroup implements steps 3-5 of the detection algorithm within a
// single pool group: find same-actor (frontrun, backrun) pairs in
// opposite token directions, locate a qualifying victim between them,
// and apply the gas-ordering check. claimedPositions is local to this
// group: a position belongs to exactly one pool, so no other group's
// scan can ever contend for it. Exclusivity across attackers is resolved
// globally afterward in resolveExclusivity, not here.
func scanGroup(group []models.SwapIntent) []candidate {
	candidates := make([]candidate, 0)
	claimedPositions := mapset.NewSet[int]()

	for fi := 0; fi < len(group); fi++ {
		f := group[fi]
		if claimedPositions.Contains(f.PositionInBatch) {
			continue
		}

		for bi := fi + 1; bi < len(group); bi++ {
			b := group[bi]
			if b.Actor != f.Actor {
				continue
			}
			if claimedPositions.Contains(b.PositionInBatch) {
				continue
			}
			if !opposingDirection(f, b) {
				continue
			}

			victim := selectVictim(group, f, b)
			if victim == nil {
				continue
			}
			if f.GasPrice.Cmp(victim.GasPrice) < 0 || victim.GasPrice.Cmp(b.GasPrice) < 0 {
				continue
			}

			profit := new(big.Int).Sub(b.AmountInEstimate, f.AmountInEstimate)
			if profit.Sign() < 0 {
				profit = big.NewInt(0)
			}

			candidates = append(candidates, candidate{
				finding: models.Finding{
					VictimTx:              victim.TxHash,
					FrontrunTx:            f.TxHash,
					BackrunTx:             b.TxHash,
					AttackerAddress:       f.Actor,
					Pool:                  f.Pool,
					EstimatedProfitNative: profit,
					DetectedAt:            time.Now(),
				},
				frontrunPos: f.PositionInBatch,
			})

			claimedPositions.Add(f.PositionInBatch)
			claimedPositions.Add(b.PositionInBatch)
			claimedPositions.Add(victim.PositionInBatch)
			break
		}
	}

	return candidates
}

// opposingDirection reports whether f and b form the A->B->A pattern:
// f buys what b later sells back.
func opposingDirection(f, b models.SwapIntent) bool {
	return f.TokenIn == b.TokenOut && f.TokenOut == b.TokenIn
}

// selectVictim scans the open interval (position(f), position(b)) for a
// different-actor swap in f's direction, per the tie-break rule: largest
// amount_in_estimate wins, ties broken by earliest position.
func selectVictim(group []models.SwapIntent, f, b models.SwapIntent) *models.SwapIntent {
	var best *models.SwapIntent
	for i := range group {
		v := group[i]
		if v.PositionInBatch <= f.PositionInBatch || v.PositionInBatch >= b.PositionInBatch {
			continue
		}
		if v.Actor == f.Actor {
			continue
		}
		if v.TokenIn != f.TokenIn || v.TokenOut != f.TokenOut {
			continue
		}
		if best == nil {
			best = &group[i]
			continue
		}
		cmp := v.AmountInEstimate.Cmp(best.AmountInEstimate)
		if cmp > 0 || (cmp == 0 && v.PositionInBatch < best.PositionInBatch) {
			best = &group[i]
		}
	}
	return best
}
