package layout

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/roach88/commune/internal/address"
)

// Character limits for free-text fields.
const (
	MaxTitleChars       = 80
	MaxDescriptionChars = 1024
)

// Version is mixed into every discriminator.
const Version = "commune/record/v1"

// Kind names a record kind.
type Kind string

// Record kinds.
const (
	KindCommune  Kind = "Commune"
	KindApprover Kind = "Approver"
	KindItem     Kind = "Item"
	KindProposal Kind = "Proposal"
	KindVote     Kind = "Vote"
)

// Discriminator returns the 8-byte prefix identifying k.
func (k Kind) Discriminator() [DiscriminatorLen]byte {
	sum := sha256.Sum256([]byte(Version + ":" + string(k)))
	var d [DiscriminatorLen]byte
	copy(d[:], sum[:DiscriminatorLen])
	return d
}

// Record is implemented by every stored record kind.
type Record interface {
	Kind() Kind
	encode(w *writer)
	decode(r *reader)
}

// MaxSize returns the allocated slot size of a kind.
func MaxSize(k Kind) int {
	switch k {
	case KindCommune:
		return DiscriminatorLen +
			U64Len + // fee
			BumpLen +
			U64Len + // tax percent
			U64Len + // item count
			U64Len + // total proposal count
			U64Len // unit scale
	case KindApprover:
		return DiscriminatorLen +
			BoolLen + // approval
			BumpLen
	case KindItem:
		return DiscriminatorLen +
			U64Len + // id
			KeyLen + // seller
			KeyLen + // buyer
			StringSpace(MaxTitleChars) +
			StringSpace(MaxDescriptionChars) +
			U64Len + // price
			U64Len + // tax
			BoolLen + // sold
			BumpLen
	case KindProposal:
		return DiscriminatorLen +
			U64Len + // id
			KeyLen + // owner
			I64Len + // created at
			StringSpace(MaxTitleChars) +
			StringSpace(MaxDescriptionChars) +
			U64Len + // requested amount
			U64Len + // vote yes
			U64Len + // vote no
			BumpLen +
			I64Len + // end timestamp
			BoolLen // approved
	case KindVote:
		return DiscriminatorLen +
			U64Len + // proposal id
			BoolLen + // vote
			KeyLen + // voter
			I64Len + // created at
			BumpLen
	default:
		return 0
	}
}

// Marshal encodes rec. It fails with ErrRecordTooLarge when a string
// exceeds its byte budget or the whole encoding exceeds MaxSize.
func Marshal(rec Record) ([]byte, error) {
	kind := rec.Kind()
	space := MaxSize(kind)

	d := kind.Discriminator()
	w := &writer{buf: make([]byte, 0, space)}
	w.buf = append(w.buf, d[:]...)
	rec.encode(w)
	if w.err != nil {
		return nil, fmt.Errorf("marshal %s: %w", kind, w.err)
	}
	if len(w.buf) > space {
		return nil, fmt.Errorf("marshal %s: %w: %d bytes, slot %d", kind, ErrRecordTooLarge, len(w.buf), space)
	}
	return w.buf, nil
}

// Unmarshal decodes data into rec after checking the discriminator.
func Unmarshal(data []byte, rec Record) error {
	kind := rec.Kind()
	d := kind.Discriminator()
	if len(data) < DiscriminatorLen {
		return fmt.Errorf("unmarshal %s: %w", kind, ErrTruncated)
	}
	if !bytes.Equal(data[:DiscriminatorLen], d[:]) {
		return fmt.Errorf("unmarshal %s: %w", kind, ErrKindMismatch)
	}
	r := &reader{data: data, off: DiscriminatorLen}
	rec.decode(r)
	if r.err != nil {
		return fmt.Errorf("unmarshal %s: %w", kind, r.err)
	}
	return nil
}

// Commune is the singleton holding the marketplace and treasury parameters.
type Commune struct {
	Fee                uint64 `json:"fee"`
	Bump               uint8  `json:"bump"`
	Tax                uint64 `json:"tax"`
	ItemCount          uint64 `json:"item_count"`
	TotalProposalCount uint64 `json:"total_proposal_count"`
	UnitScale          uint64 `json:"unit_scale"`
}

func (*Commune) Kind() Kind { return KindCommune }

func (c *Commune) encode(w *writer) {
	w.u64(c.Fee)
	w.u8(c.Bump)
	w.u64(c.Tax)
	w.u64(c.ItemCount)
	w.u64(c.TotalProposalCount)
	w.u64(c.UnitScale)
}

func (c *Commune) decode(r *reader) {
	c.Fee = r.u64()
	c.Bump = r.u8()
	c.Tax = r.u64()
	c.ItemCount = r.u64()
	c.TotalProposalCount = r.u64()
	c.UnitScale = r.u64()
}

// Approver marks an identity as a member.
type Approver struct {
	Approval bool  `json:"approval"`
	Bump     uint8 `json:"bump"`
}

func (*Approver) Kind() Kind { return KindApprover }

func (a *Approver) encode(w *writer) {
	w.boolean(a.Approval)
	w.u8(a.Bump)
}

func (a *Approver) decode(r *reader) {
	a.Approval = r.boolean()
	a.Bump = r.u8()
}

// Item is a marketplace listing. Buyer stays zero until the item is sold.
type Item struct {
	ID          uint64      `json:"id"`
	Seller      address.Key `json:"seller"`
	Buyer       address.Key `json:"buyer"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       uint64      `json:"price"`
	Tax         uint64      `json:"tax"`
	Sold        bool        `json:"sold"`
	Bump        uint8       `json:"bump"`
}

func (*Item) Kind() Kind { return KindItem }

func (it *Item) encode(w *writer) {
	w.u64(it.ID)
	w.key(it.Seller)
	w.key(it.Buyer)
	w.str("title", it.Title, MaxTitleChars)
	w.str("description", it.Description, MaxDescriptionChars)
	w.u64(it.Price)
	w.u64(it.Tax)
	w.boolean(it.Sold)
	w.u8(it.Bump)
}

func (it *Item) decode(r *reader) {
	it.ID = r.u64()
	it.Seller = r.key()
	it.Buyer = r.key()
	it.Title = r.str()
	it.Description = r.str()
	it.Price = r.u64()
	it.Tax = r.u64()
	it.Sold = r.boolean()
	it.Bump = r.u8()
}

// Proposal is a treasury expenditure request. Price is the requested amount.
type Proposal struct {
	ID           uint64      `json:"id"`
	Owner        address.Key `json:"owner"`
	CreatedAt    int64       `json:"created_at"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Price        uint64      `json:"price"`
	VoteYes      uint64      `json:"vote_yes"`
	VoteNo       uint64      `json:"vote_no"`
	Bump         uint8       `json:"bump"`
	EndTimestamp int64       `json:"end_timestamp"`
	Approved     bool        `json:"approved"`
}

func (*Proposal) Kind() Kind { return KindProposal }

func (p *Proposal) encode(w *writer) {
	w.u64(p.ID)
	w.key(p.Owner)
	w.i64(p.CreatedAt)
	w.str("title", p.Title, MaxTitleChars)
	w.str("description", p.Description, MaxDescriptionChars)
	w.u64(p.Price)
	w.u64(p.VoteYes)
	w.u64(p.VoteNo)
	w.u8(p.Bump)
	w.i64(p.EndTimestamp)
	w.boolean(p.Approved)
}

func (p *Proposal) decode(r *reader) {
	p.ID = r.u64()
	p.Owner = r.key()
	p.CreatedAt = r.i64()
	p.Title = r.str()
	p.Description = r.str()
	p.Price = r.u64()
	p.VoteYes = r.u64()
	p.VoteNo = r.u64()
	p.Bump = r.u8()
	p.EndTimestamp = r.i64()
	p.Approved = r.boolean()
}

// Vote is a write-once ballot of one voter on one proposal.
type Vote struct {
	ProposalID uint64      `json:"proposal_id"`
	Vote       bool        `json:"vote"`
	Voter      address.Key `json:"voter"`
	CreatedAt  int64       `json:"created_at"`
	Bump       uint8       `json:"bump"`
}

func (*Vote) Kind() Kind { return KindVote }

func (v *Vote) encode(w *writer) {
	w.u64(v.ProposalID)
	w.boolean(v.Vote)
	w.key(v.Voter)
	w.i64(v.CreatedAt)
	w.u8(v.Bump)
}

func (v *Vote) decode(r *reader) {
	v.ProposalID = r.u64()
	v.Vote = r.boolean()
	v.Voter = r.key()
	v.CreatedAt = r.i64()
	v.Bump = r.u8()
}
