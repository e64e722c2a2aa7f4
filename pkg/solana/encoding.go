package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/tipsea/tipsea-solana/pkg/solana/shortvec"
)

// Marshal encodes the transaction in the legacy wire format: the shortvec
// prefixed signatures followed by the message.
func (t Transaction) Marshal() []byte {
	var b bytes.Buffer

	writeLen(&b, len(t.Signatures))
	for _, s := range t.Signatures {
		b.Write(s[:])
	}
	b.Write(t.Message.Marshal())

	return b.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	r := bytes.NewReader(b)

	sigLen, err := shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read signature length")
	}

	t.Signatures = make([]Signature, sigLen)
	for i := range t.Signatures {
		if _, err := io.ReadFull(r, t.Signatures[i][:]); err != nil {
			return errors.Wrapf(err, "failed to read signature at %d", i)
		}
	}

	return t.Message.Unmarshal(b[len(b)-r.Len():])
}

// Marshal encodes the message in the legacy wire format, which is also the
// payload that gets signed.
func (m Message) Marshal() []byte {
	var b bytes.Buffer

	b.Write([]byte{m.Header.NumSignatures, m.Header.NumReadonlySigned, m.Header.NumReadOnly})

	writeLen(&b, len(m.Accounts))
	for _, a := range m.Accounts {
		b.Write(a)
	}

	b.Write(m.RecentBlockhash[:])

	writeLen(&b, len(m.Instructions))
	for _, i := range m.Instructions {
		b.WriteByte(i.ProgramIndex)
		writeLen(&b, len(i.Accounts))
		b.Write(i.Accounts)
		writeLen(&b, len(i.Data))
		b.Write(i.Data)
	}

	return b.Bytes()
}

// Unmarshal decodes a legacy message, rejecting versioned messages and
// instructions that reference accounts outside the account list.
func (m *Message) Unmarshal(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	if b[0]&0x80 != 0 {
		return errors.New("versioned messages not supported")
	}

	r := &messageReader{r: bytes.NewReader(b)}

	header := r.bytes(3, "header")
	if r.err != nil {
		return r.err
	}
	m.Header = Header{
		NumSignatures:     header[0],
		NumReadonlySigned: header[1],
		NumReadOnly:       header[2],
	}

	m.Accounts = make([]ed25519.PublicKey, r.len("account len"))
	for i := range m.Accounts {
		m.Accounts[i] = r.bytes(ed25519.PublicKeySize, "account")
	}

	copy(m.RecentBlockhash[:], r.bytes(len(m.RecentBlockhash), "recent blockhash"))

	m.Instructions = make([]CompiledInstruction, r.len("instruction len"))
	for i := range m.Instructions {
		c := &m.Instructions[i]
		c.ProgramIndex = r.bytes(1, "program index")[0]
		c.Accounts = r.bytes(r.len("instruction account len"), "instruction accounts")
		c.Data = r.bytes(r.len("instruction data len"), "instruction data")
		if r.err != nil {
			return errors.Wrapf(r.err, "instruction %d", i)
		}

		if int(c.ProgramIndex) >= len(m.Accounts) {
			return errors.Errorf("program index out of range: %d:%d", i, c.ProgramIndex)
		}
		for _, index := range c.Accounts {
			if int(index) >= len(m.Accounts) {
				return errors.Errorf("account index out of range: %d:%d", i, index)
			}
		}
	}

	return r.err
}

// messageReader reads length prefixed sections, keeping the first error. Once
// an error occurs every read returns zeroed data.
type messageReader struct {
	r   *bytes.Reader
	err error
}

func (mr *messageReader) len(what string) int {
	if mr.err != nil {
		return 0
	}

	n, err := shortvec.DecodeLen(mr.r)
	if err != nil {
		mr.err = errors.Wrapf(err, "failed to read %s", what)
		return 0
	}
	return n
}

func (mr *messageReader) bytes(n int, what string) []byte {
	b := make([]byte, n)
	if mr.err != nil {
		return b
	}

	if _, err := io.ReadFull(mr.r, b); err != nil {
		mr.err = errors.Wrapf(err, "failed to read %s", what)
	}
	return b
}

func writeLen(b *bytes.Buffer, n int) {
	// Lengths past a uint16 are rejected by the cluster; callers keep within
	// MaxTransactionSize.
	_, _ = shortvec.EncodeLen(b, n)
}
