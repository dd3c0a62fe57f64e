package engine

import (
	"context"
	"errors"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/ir"
	"github.com/roach88/commune/internal/layout"
)

// AddProposalRequest opens a treasury proposal.
type AddProposalRequest struct {
	ID           uint64
	Title        string
	Description  string
	Amount       uint64 // requested payout, in base units
	EndTimestamp int64  // Unix seconds; voting is open while now <= EndTimestamp
	Nonce        uint8
}

// ProposalStatus is the derived lifecycle state of a proposal.
type ProposalStatus string

const (
	ProposalOpen     ProposalStatus = "open"
	ProposalPassed   ProposalStatus = "passed" // closed with a yes majority, not yet paid
	ProposalRejected ProposalStatus = "rejected"
	ProposalApproved ProposalStatus = "approved"
)

// StatusAt returns the state of p at time now. Only Approved is stored;
// the other states follow from the deadline and the tally.
func StatusAt(p layout.Proposal, now int64) ProposalStatus {
	switch {
	case p.Approved:
		return ProposalApproved
	case now <= p.EndTimestamp:
		return ProposalOpen
	case p.VoteYes > p.VoteNo:
		return ProposalPassed
	default:
		return ProposalRejected
	}
}

// AddProposal records a proposal owned by owner with an empty tally.
func (e *Engine) AddProposal(ctx context.Context, owner address.Key, req AddProposalRequest) (layout.Proposal, error) {
	c := call{
		action: "Commune.addProposal",
		caller: owner,
		args: ir.IRObject{
			"id":            amountArg(req.ID),
			"title":         ir.IRString(req.Title),
			"description":   ir.IRString(req.Description),
			"amount":        amountArg(req.Amount),
			"end_timestamp": ir.IRInt(req.EndTimestamp),
			"nonce":         nonceArg(req.Nonce),
		},
	}

	var p layout.Proposal
	_, err := e.execute(ctx, c, func(t *txn) (ir.IRObject, error) {
		s, err := t.reserve(layout.KindProposal, req.Nonce, address.ProposalSeeds(req.ID))
		if err != nil {
			return nil, err
		}
		commune, pool, err := t.commune()
		if err != nil {
			return nil, err
		}

		if err := t.requireMember(owner); err != nil {
			return nil, err
		}
		if err := checkText(req.Title, req.Description); err != nil {
			return nil, err
		}

		p = layout.Proposal{
			ID:           req.ID,
			Owner:        owner,
			CreatedAt:    t.now,
			Title:        req.Title,
			Description:  req.Description,
			Price:        req.Amount,
			Bump:         s.bump,
			EndTimestamp: req.EndTimestamp,
		}
		if err := t.create(s, &p); err != nil {
			return nil, err
		}

		if commune.TotalProposalCount, err = addCount(commune.TotalProposalCount, "proposal count"); err != nil {
			return nil, err
		}
		if err := t.save(pool, commune); err != nil {
			return nil, err
		}
		return ir.IRObject{"proposal": keyArg(s.addr)}, nil
	})
	if err != nil {
		return layout.Proposal{}, err
	}
	return p, nil
}

// VoteForProposal casts voter's single vote on a proposal.
//
// The vote record and the tally commit together: a vote after the deadline
// fails with VotingWindowClosed and leaves neither behind, and a second
// vote by the same identity fails with VoteAlreadyCast.
func (e *Engine) VoteForProposal(ctx context.Context, voter address.Key, proposalID uint64, vote bool, nonce uint8) (layout.Proposal, error) {
	c := call{
		action: "Commune.voteForProposal",
		caller: voter,
		args: ir.IRObject{
			"proposal_id": amountArg(proposalID),
			"vote":        ir.IRBool(vote),
			"nonce":       nonceArg(nonce),
		},
	}

	var p layout.Proposal
	_, err := e.execute(ctx, c, func(t *txn) (ir.IRObject, error) {
		addr, err := t.load(address.ProposalSeeds(proposalID), &p)
		if err != nil {
			return nil, err
		}

		if err := t.requireMember(voter); err != nil {
			return nil, err
		}

		s, err := t.reserve(layout.KindVote, nonce, address.VoteSeeds(proposalID, voter))
		if errors.Is(err, ErrRecordExists) {
			return nil, &Error{
				Code:    CodeVoteAlreadyCast,
				Message: "vote already cast on proposal",
				Err:     err,
				Details: map[string]string{"voter": voter.String()},
			}
		}
		if err != nil {
			return nil, err
		}
		if err := t.create(s, &layout.Vote{
			ProposalID: proposalID,
			Vote:       vote,
			Voter:      voter,
			CreatedAt:  t.now,
			Bump:       s.bump,
		}); err != nil {
			return nil, err
		}

		if t.now > p.EndTimestamp {
			return nil, newError(CodeVotingWindowClosed, "voting on proposal %d ended at %d", proposalID, p.EndTimestamp)
		}

		if vote {
			p.VoteYes, err = addCount(p.VoteYes, "yes votes")
		} else {
			p.VoteNo, err = addCount(p.VoteNo, "no votes")
		}
		if err != nil {
			return nil, err
		}
		if err := t.save(addr, &p); err != nil {
			return nil, err
		}
		return ir.IRObject{
			"vote":     keyArg(s.addr),
			"vote_yes": amountArg(p.VoteYes),
			"vote_no":  amountArg(p.VoteNo),
		}, nil
	})
	if err != nil {
		return layout.Proposal{}, err
	}
	return p, nil
}

// ApproveProposal pays out a proposal that closed with a yes majority.
//
// claimedOwner must be the proposal's owner. The payout moves from the
// commune pool to the owner exactly once.
func (e *Engine) ApproveProposal(ctx context.Context, caller address.Key, proposalID uint64, claimedOwner address.Key) (layout.Proposal, error) {
	c := call{
		action: "Commune.approveProposal",
		caller: caller,
		args: ir.IRObject{
			"proposal_id": amountArg(proposalID),
			"owner":       keyArg(claimedOwner),
		},
	}

	var p layout.Proposal
	_, err := e.execute(ctx, c, func(t *txn) (ir.IRObject, error) {
		addr, err := t.load(address.ProposalSeeds(proposalID), &p)
		if err != nil {
			return nil, err
		}
		_, pool, err := t.commune()
		if err != nil {
			return nil, err
		}

		if claimedOwner != p.Owner {
			return nil, newError(CodeNotAMember, "%s does not own proposal %d", claimedOwner, proposalID)
		}
		if t.now <= p.EndTimestamp {
			return nil, newError(CodeVotingStillOpen, "voting on proposal %d is open until %d", proposalID, p.EndTimestamp)
		}
		if p.VoteYes <= p.VoteNo {
			return nil, newError(CodeProposalRejected, "proposal %d closed %d yes to %d no", proposalID, p.VoteYes, p.VoteNo)
		}
		if p.Approved {
			return nil, newError(CodeProposalAlreadyApproved, "proposal %d was already paid out", proposalID)
		}

		if err := t.transfer(pool, p.Owner, p.Price); err != nil {
			return nil, err
		}
		p.Approved = true
		if err := t.save(addr, &p); err != nil {
			return nil, err
		}
		return ir.IRObject{
			"proposal": keyArg(addr),
			"amount":   amountArg(p.Price),
		}, nil
	})
	if err != nil {
		return layout.Proposal{}, err
	}
	return p, nil
}
