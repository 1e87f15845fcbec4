// Package match cross-indexes normalized markets from venue A and
// venue B into exclusive pairs believed to describe the same
// real-world event.
package match

import (
	"time"

	"github.com/EMMoasis/BothMarkets/internal/types"
)

const (
	toleranceSports = 4 * time.Hour
	toleranceCrypto = 1 * time.Hour
)

// Options configures matching behavior.
type Options struct {
	// MatchCrypto enables the 4-criterion crypto join. Off by default.
	MatchCrypto bool
}

// Rejection records why a candidate venue-B market was not paired with
// a bucket member, for observability.
type Rejection struct {
	A      types.NormalizedMarket
	B      types.NormalizedMarket
	Reason string
}

// Result is the outcome of one matching pass.
type Result struct {
	Pairs      []types.MatchedPair
	Rejections []Rejection
}

type sportsBucketKey struct {
	sport   string
	team    string
	subtype types.SportSubtype
}

type cryptoBucketKey struct {
	asset     string
	direction types.Direction
}

// Match buckets venue-A markets and probes each venue-B market against
// its bucket, consuming each market at most once (§4.2).
func Match(a, b []types.NormalizedMarket, opts Options) Result {
	res := Result{}

	sportsBuckets := make(map[sportsBucketKey][]types.NormalizedMarket)
	cryptoBuckets := make(map[cryptoBucketKey][]types.NormalizedMarket)
	consumedA := make(map[string]bool)

	for _, m := range a {
		if m.AssetClass == types.AssetSports {
			key := sportsBucketKey{sport: m.Sport, team: m.Team, subtype: m.SportSubtype}
			sportsBuckets[key] = append(sportsBuckets[key], m)
		} else if opts.MatchCrypto && m.AssetClass == types.AssetCrypto {
			key := cryptoBucketKey{asset: m.CryptoAsset, direction: m.Direction}
			cryptoBuckets[key] = append(cryptoBuckets[key], m)
		}
	}

	for _, bm := range b {
		var candidates []types.NormalizedMarket
		switch {
		case bm.AssetClass == types.AssetSports:
			key := sportsBucketKey{sport: bm.Sport, team: bm.Team, subtype: bm.SportSubtype}
			candidates = sportsBuckets[key]
		case opts.MatchCrypto && bm.AssetClass == types.AssetCrypto:
			key := cryptoBucketKey{asset: bm.CryptoAsset, direction: bm.Direction}
			candidates = cryptoBuckets[key]
		default:
			continue
		}

		matched := false
		for _, am := range candidates {
			if consumedA[am.Key()] {
				continue
			}
			reason := ""
			if am.AssetClass == types.AssetSports {
				reason = rejectSports(am, bm)
			} else {
				reason = rejectCrypto(am, bm)
			}
			if reason != "" {
				res.Rejections = append(res.Rejections, Rejection{A: am, B: bm, Reason: reason})
				continue
			}
			consumedA[am.Key()] = true
			res.Pairs = append(res.Pairs, types.MatchedPair{A: am, B: bm})
			matched = true
			break
		}
		_ = matched
	}

	return res
}

// rejectSports returns a non-empty rejection reason if the remaining
// sports criteria (beyond the bucket key) do not hold.
func rejectSports(a, b types.NormalizedMarket) string {
	if a.Opponent != b.Opponent {
		return "opponent_mismatch"
	}
	if diff := absDuration(a.ResolutionDT.Sub(b.ResolutionDT)); diff > toleranceSports {
		return "date_gap"
	}
	if a.MapNumber != nil && b.MapNumber != nil && *a.MapNumber != *b.MapNumber {
		return "map_number_mismatch"
	}
	return ""
}

func rejectCrypto(a, b types.NormalizedMarket) string {
	if !a.Threshold.Equal(b.Threshold) {
		return "threshold_mismatch"
	}
	if diff := absDuration(a.ResolutionDT.Sub(b.ResolutionDT)); diff > toleranceCrypto {
		return "date_gap"
	}
	return ""
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
