package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"sort"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

// MaxTransactionSize is the largest serialized transaction a cluster accepts,
// which is the packet size less its headers.
const MaxTransactionSize = 1232

var (
	ErrMissingSignature = errors.New("missing required signature")
	ErrInvalidSignature = errors.New("invalid signature")
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

// Header counts the signed and readonly sections of the account list.
// Accounts are ordered: writable signers, readonly signers, writable
// non-signers, then readonly non-signers.
type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles the instructions into a legacy transaction paid for,
// and first signed, by payer.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	metas := []AccountMeta{{PublicKey: payer, IsSigner: true, IsWritable: true, isPayer: true}}
	for _, i := range instructions {
		metas = append(metas, AccountMeta{PublicKey: i.Program, isProgram: true})
		metas = append(metas, i.Accounts...)
	}

	metas = mergeAccountMetas(metas)
	sort.Sort(SortableAccountMeta(metas))

	var m Message
	index := make(map[string]byte, len(metas))
	for _, meta := range metas {
		key := meta.PublicKey
		if len(key) == 0 {
			key = make([]byte, ed25519.PublicKeySize)
		}
		index[string(meta.PublicKey)] = byte(len(m.Accounts))
		m.Accounts = append(m.Accounts, key)

		switch {
		case meta.IsSigner && !meta.IsWritable:
			m.Header.NumReadonlySigned++
			fallthrough
		case meta.IsSigner:
			m.Header.NumSignatures++
		case !meta.IsWritable:
			m.Header.NumReadOnly++
		}
	}

	for _, i := range instructions {
		c := CompiledInstruction{
			ProgramIndex: index[string(i.Program)],
			Accounts:     make([]byte, 0, len(i.Accounts)),
			Data:         i.Data,
		}
		for _, a := range i.Accounts {
			c.Accounts = append(c.Accounts, index[string(a.PublicKey)])
		}
		m.Instructions = append(m.Instructions, c)
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

// Signature returns the first signature, which identifies the transaction.
func (t *Transaction) Signature() []byte {
	return t.Signatures[0][:]
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

// Sign signs the message with each of the provided keys, which must all be
// signers of the message. The blockhash must be set first.
func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	message := t.Message.Marshal()

	for _, s := range signers {
		pub := s.Public().(ed25519.PublicKey)

		index := indexOf(t.Message.Accounts, pub)
		switch {
		case index < 0:
			return errors.Errorf("signing account %s is not in the account list", base58.Encode(pub))
		case index >= len(t.Signatures):
			return errors.Errorf("signing account %s is not in the list of signers", base58.Encode(pub))
		}

		copy(t.Signatures[index][:], ed25519.Sign(s, message))
	}

	return nil
}

// VerifySignatures checks that every account the header marks as a signer
// produced a valid signature over the message.
func (t *Transaction) VerifySignatures() error {
	if len(t.Signatures) != int(t.Message.Header.NumSignatures) {
		return errors.Errorf("signature count mismatch: %d (expected %d)", len(t.Signatures), t.Message.Header.NumSignatures)
	}
	if len(t.Message.Accounts) < len(t.Signatures) {
		return errors.New("fewer accounts than signatures")
	}

	var empty Signature
	message := t.Message.Marshal()
	for i, sig := range t.Signatures {
		signer := t.Message.Accounts[i]
		if sig == empty {
			return errors.Wrapf(ErrMissingSignature, "account %s", base58.Encode(signer))
		}
		if !ed25519.Verify(signer, message, sig[:]) {
			return errors.Wrapf(ErrInvalidSignature, "account %s", base58.Encode(signer))
		}
	}
	return nil
}

// IsSigner returns whether the account at the provided message index is a signer.
func (m *Message) IsSigner(index int) bool {
	return index < int(m.Header.NumSignatures)
}

// IsWritable returns whether the account at the provided message index is writable.
func (m *Message) IsWritable(index int) bool {
	numSigned := int(m.Header.NumSignatures)
	if index < numSigned {
		return index < numSigned-int(m.Header.NumReadonlySigned)
	}
	return index < len(m.Accounts)-int(m.Header.NumReadOnly)
}

// mergeAccountMetas collapses repeated keys into their first occurrence,
// keeping the union of their permissions.
func mergeAccountMetas(metas []AccountMeta) []AccountMeta {
	merged := make([]AccountMeta, 0, len(metas))
	seen := make(map[string]int, len(metas))

	for _, meta := range metas {
		i, ok := seen[string(meta.PublicKey)]
		if !ok {
			seen[string(meta.PublicKey)] = len(merged)
			merged = append(merged, meta)
			continue
		}

		merged[i].IsSigner = merged[i].IsSigner || meta.IsSigner
		merged[i].IsWritable = merged[i].IsWritable || meta.IsWritable
		merged[i].isPayer = merged[i].isPayer || meta.isPayer
	}

	return merged
}

func indexOf(keys []ed25519.PublicKey, key ed25519.PublicKey) int {
	for i, k := range keys {
		if bytes.Equal(k, key) {
			return i
		}
	}
	return -1
}
