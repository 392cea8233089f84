package match

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/debug"
)

// FindDuplicateGroups compares every candidate with every later one and
// joins matched pairs into groups. This is quadratic in len(candidates);
// it is meant for periodic clean-up runs, not interactive checks.
//
// Rows are spread over at most workers goroutines (NumCPU when workers <= 0).
// Cancelling ctx stops the scan between rows.
func (d *Detector) FindDuplicateGroups(ctx context.Context, candidates []candidate.Candidate, workers int) ([]DuplicateGroup, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	cfg := d.config.Load()
	defer debug.DebugTiming(d.debug, "duplicate group scan")()

	type rowPair struct {
		j    int
		pair PairMatch
	}
	rows := make([][]rowPair, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range candidates {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			in := candidate.InputOf(candidates[i])
			for j := i + 1; j < len(candidates); j++ {
				m := compare(cfg, false, in, candidates[j])
				if m == nil {
					continue
				}
				rows[i] = append(rows[i], rowPair{j: j, pair: PairMatch{
					FirstID:    candidates[i].ID,
					SecondID:   candidates[j].ID,
					MatchScore: m.MatchScore,
					Confidence: m.Confidence,
					Reasons:    m.MatchReasons,
				}})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	uf := newUnionFind(len(candidates))
	for i, row := range rows {
		for _, rp := range row {
			uf.union(i, rp.j)
		}
	}

	byRoot := make(map[int]*DuplicateGroup)
	var roots []int
	for i, row := range rows {
		for _, rp := range row {
			p := rp.pair
			root := uf.find(i)
			grp, ok := byRoot[root]
			if !ok {
				grp = &DuplicateGroup{}
				byRoot[root] = grp
				roots = append(roots, root)
			}
			grp.Pairs = append(grp.Pairs, p)
			if p.MatchScore > grp.TopScore {
				grp.TopScore = p.MatchScore
			}
		}
	}

	for i, c := range candidates {
		if grp, ok := byRoot[uf.find(i)]; ok {
			grp.Members = append(grp.Members, c)
		}
	}

	groups := make([]DuplicateGroup, 0, len(roots))
	for _, root := range roots {
		grp := byRoot[root]
		sort.SliceStable(grp.Pairs, func(a, b int) bool {
			return grp.Pairs[a].MatchScore > grp.Pairs[b].MatchScore
		})
		grp.Confidence = ConfidenceFor(grp.TopScore)
		groups = append(groups, *grp)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].TopScore > groups[b].TopScore
	})

	d.logger.Info("duplicate group scan complete",
		"candidates", len(candidates), "groups", len(groups), "workers", workers)
	return groups, nil
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// union keeps the lower index as root so group order follows input order
func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}
