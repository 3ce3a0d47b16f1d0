package wallet

import (
	"math/big"
	"sort"

	"github.com/holiman/uint256"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

// Selection is a set of notes covering a target amount.
type Selection struct {
	Selected []*NoteEntry
	Total    *uint256.Int
	Change   *uint256.Int
}

// SelectNotesForAmount picks unspent notes of token, largest first, until
// target is covered or maxNotes notes are taken. Notes of equal amount keep
// their original order. A nil token matches every mint.
func SelectNotesForAmount(target *uint256.Int, notes []*NoteEntry, token *big.Int, maxNotes int) (*Selection, error) {
	if target == nil || target.IsZero() {
		return nil, errors.Wrap(types.ErrInvalidAmount, "target must be positive")
	}
	if maxNotes <= 0 {
		return nil, errors.Wrapf(types.ErrInvalidInputCount, "max notes must be positive, got %d", maxNotes)
	}
	candidates := sortedUnspent(notes, token)

	sel := &Selection{Total: uint256.NewInt(0), Change: uint256.NewInt(0)}
	for _, e := range candidates {
		if sel.Total.Cmp(target) >= 0 {
			break
		}
		if len(sel.Selected) == maxNotes {
			break
		}
		sel.Selected = append(sel.Selected, e)
		sel.Total.Add(sel.Total, e.Note.Amount)
	}
	if sel.Total.Lt(target) {
		return nil, errors.Wrapf(types.ErrInsufficientFunds,
			"target %s, reachable %s with %d notes", target.Dec(), sel.Total.Dec(), len(sel.Selected))
	}
	sel.Change.Sub(sel.Total, target)
	return sel, nil
}

func sortedUnspent(notes []*NoteEntry, token *big.Int) []*NoteEntry {
	var out []*NoteEntry
	for _, e := range notes {
		if !e.Spent && matchToken(e, token) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Note.Amount.Gt(out[j].Note.Amount)
	})
	return out
}

func batchSize(n int) int {
	if n <= 0 || n > types.MaxConsolidateInputs {
		return types.MaxConsolidateInputs
	}
	return n
}

// PartitionForConsolidation splits the unspent notes of token into
// consecutive groups of at most size notes. Size defaults to
// MaxConsolidateInputs. A consolidation spends one mint, so a nil token
// is only safe when every note shares it.
func PartitionForConsolidation(notes []*NoteEntry, token *big.Int, size int) [][]*NoteEntry {
	size = batchSize(size)
	var unspent []*NoteEntry
	for _, e := range notes {
		if !e.Spent && matchToken(e, token) {
			unspent = append(unspent, e)
		}
	}
	var groups [][]*NoteEntry
	for len(unspent) > 0 {
		n := min(size, len(unspent))
		groups = append(groups, unspent[:n:n])
		unspent = unspent[n:]
	}
	return groups
}

// ConsolidationRounds is the number of batch rounds needed to merge n notes
// into one.
func ConsolidationRounds(n, size int) int {
	size = batchSize(size)
	if size < 2 {
		return 0
	}
	rounds := 0
	for n > 1 {
		n = (n + size - 1) / size
		rounds++
	}
	return rounds
}

// StagedStep spends one note, fully or in part.
type StagedStep struct {
	Note    *NoteEntry
	Amount  *uint256.Int
	Partial bool
}

type StagedPlan struct {
	Steps       []StagedStep
	TotalToSend *uint256.Int
	HasPartial  bool
}

// PlanStagedSend covers target with a sequence of single-note sends: whole
// notes, largest first, while each fits in what is left, then one partial
// step on the next note. TotalToSend falls short of target only when the
// notes of token run out. A nil token matches every mint.
func PlanStagedSend(notes []*NoteEntry, token *big.Int, target *uint256.Int) (*StagedPlan, error) {
	if target == nil || target.IsZero() {
		return nil, errors.Wrap(types.ErrInvalidAmount, "target must be positive")
	}
	plan := &StagedPlan{TotalToSend: uint256.NewInt(0)}
	remaining := target.Clone()
	for _, e := range sortedUnspent(notes, token) {
		if remaining.IsZero() {
			break
		}
		amt := e.Note.Amount
		if amt.Cmp(remaining) <= 0 {
			plan.Steps = append(plan.Steps, StagedStep{Note: e, Amount: amt.Clone()})
			remaining.Sub(remaining, amt)
			continue
		}
		plan.Steps = append(plan.Steps, StagedStep{Note: e, Amount: remaining.Clone(), Partial: true})
		plan.HasPartial = true
		remaining.Clear()
	}
	plan.TotalToSend.Sub(target, remaining)
	return plan, nil
}
