package reader

import (
	"fmt"
	"regexp"

	"github.com/joshuapare/bsakit/pkg/types"
)

// Query compiles pattern case-insensitively. The empty pattern matches every
// asset. Matching happens lazily as the iterator advances.
func (r *reader) Query(pattern string) (types.AssetQuery, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	q := &assetQuery{r: r, pattern: pattern}
	if pattern != "" {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, &types.Error{
				Kind: types.ErrKindInvalidArgument,
				Msg:  fmt.Sprintf("pattern %q: %v", pattern, err),
				Err:  types.ErrInvalidPattern,
			}
		}
		q.re = re
	}
	return q, nil
}

// Assets materializes Query(pattern). No matches yields an empty, non-nil
// slice.
func (r *reader) Assets(pattern string) ([]types.AssetEntry, error) {
	q, err := r.Query(pattern)
	if err != nil {
		return nil, err
	}
	out := []types.AssetEntry{}
	it := q.Iter()
	for it.Next() {
		out = append(out, it.Entry())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type assetQuery struct {
	r       *reader
	pattern string
	re      *regexp.Regexp // nil matches everything
}

func (q *assetQuery) Pattern() string { return q.pattern }

// Iter starts a fresh pass in directory order.
func (q *assetQuery) Iter() types.AssetIter {
	return &assetIter{q: q, pos: -1}
}

type assetIter struct {
	q   *assetQuery
	pos int
	cur types.AssetEntry
	err error
}

func (it *assetIter) Next() bool {
	if it.err != nil {
		return false
	}
	r := it.q.r
	if err := r.ensureOpen(); err != nil {
		it.err = err
		return false
	}
	for it.pos+1 < len(r.idx.files) {
		it.pos++
		path := r.idx.path(it.pos)
		if it.q.re != nil && !it.q.re.MatchString(path) {
			continue
		}
		it.cur = r.entry(it.pos)
		return true
	}
	return false
}

func (it *assetIter) Entry() types.AssetEntry { return it.cur }

func (it *assetIter) Err() error { return it.err }
