/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuer

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/exp/slices"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claimpath"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
)

// Encoder turns a claim tree into SD-JWT payload and disclosures.
// Decoy bookkeeping is per encoder: use one encoder per issuance.
type Encoder struct {
	engine      *common.DigestEngine
	decoysLimit int
	decoyCount  int
}

// EncoderOpt is the Encoder option.
type EncoderOpt func(e *Encoder)

// WithDecoysLimit sets maximum number of decoy digests added by one Encode call (default 0).
func WithDecoysLimit(limit int) EncoderOpt {
	return func(e *Encoder) {
		e.decoysLimit = limit
	}
}

// NewEncoder creates encoder.
func NewEncoder(engine *common.DigestEngine, opts ...EncoderOpt) *Encoder {
	e := &Encoder{engine: engine}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// DecoyCount returns number of decoy digests added by the last Encode call.
func (e *Encoder) DecoyCount() int {
	return e.decoyCount
}

// Encoded is the result of encoding: payload to be signed and disclosures in issuance order.
type Encoded struct {
	Payload     *claims.Object
	Disclosures []common.Disclosure
}

// Encode encodes claim tree. The payload starts with _sd_alg.
//
// Object members that are disclosed (Flat, RecursiveObject, RecursiveArray) are replaced by digests in the
// sorted _sd array of the enclosing object; disclosed array elements are replaced by {"...": digest}.
func (e *Encoder) Encode(tree *claims.Tree) (*Encoded, error) {
	if tree == nil {
		return nil, common.NewError(common.ErrNonObjectFormat, nil)
	}

	if err := tree.Err(); err != nil {
		return nil, common.NewError(common.ErrEncoding, err)
	}

	e.decoyCount = 0

	obj, disclosures, err := e.encodeObject(claimpath.New(), tree)
	if err != nil {
		return nil, err
	}

	payload := claims.NewObject()
	payload.Set(common.SDAlgorithmKey, claims.String(e.engine.Algorithm().String()))

	obj.Range(func(name string, v claims.Value) bool {
		payload.Set(name, v)

		return true
	})

	logger.Debugf("encoded %d disclosures and %d decoys", len(disclosures), e.decoyCount)

	return &Encoded{Payload: payload, Disclosures: disclosures}, nil
}

func (e *Encoder) encodeObject(path claimpath.Path, tree *claims.Tree) (*claims.Object, []common.Disclosure, error) {
	obj := claims.NewObject()

	var (
		digests     []string
		disclosures []common.Disclosure
		err         error
	)

	tree.Range(func(name string, n claims.Node) bool {
		memberPath := path.AppendName(name)

		if common.IsReservedClaimName(name) {
			err = common.NewError(common.ErrReservedClaimName, fmt.Errorf("claim name '%s'", name)).WithPath(memberPath)

			return false
		}

		var (
			value    claims.Value
			disclose bool
			nested   []common.Disclosure
		)

		value, disclose, nested, err = e.encodeNode(memberPath, n)
		if err != nil {
			return false
		}

		disclosures = append(disclosures, nested...)

		if !disclose {
			obj.Set(name, value)

			return true
		}

		var (
			d      common.Disclosure
			digest string
		)

		d, digest, err = e.discloseMember(name, value)
		if err != nil {
			err = fmt.Errorf("claim %s: %w", memberPath, err)

			return false
		}

		digests = append(digests, digest)
		disclosures = append(disclosures, d)

		return true
	})

	if err != nil {
		return nil, nil, err
	}

	if len(digests) > 0 {
		decoys, err := e.decoys()
		if err != nil {
			return nil, nil, err
		}

		digests = append(digests, decoys...)
		slices.Sort(digests)

		obj.Set(common.SDKey, digestSequence(digests))
	}

	return obj, disclosures, nil
}

// encodeNode returns encoded value of the node and whether it has to be disclosed by the enclosing container.
func (e *Encoder) encodeNode(path claimpath.Path, n claims.Node) (claims.Value, bool, []common.Disclosure, error) {
	switch node := n.(type) {
	case claims.Plain:
		return claims.Copy(node.Value), false, nil, nil
	case claims.Flat:
		return claims.Copy(node.Value), true, nil, nil
	case claims.ObjectNode:
		obj, disclosures, err := e.encodeObject(path, node.Members)

		return obj, false, disclosures, err
	case claims.ArrayNode:
		seq, disclosures, err := e.encodeArray(path, node.Elements, true)

		return seq, false, disclosures, err
	case claims.RecursiveObject:
		obj, disclosures, err := e.encodeObject(path, node.Members)

		return obj, true, disclosures, err
	case claims.RecursiveArray:
		seq, disclosures, err := e.encodeArray(path, node.Elements, false)

		return seq, true, disclosures, err
	default:
		return nil, false, nil, common.NewError(common.ErrEncoding, claims.NodeErr(n)).WithPath(path)
	}
}

// encodeArray encodes elements in place. Decoys are appended after the elements
// unless the array is disclosed as a whole.
func (e *Encoder) encodeArray(path claimpath.Path, elements []claims.Node,
	allowDecoys bool) (claims.Sequence, []common.Disclosure, error) {
	seq := make(claims.Sequence, 0, len(elements))

	var (
		disclosures []common.Disclosure
		disclosed   int
	)

	for i, el := range elements {
		elementPath := path.AppendIndex(i)

		value, disclose, nested, err := e.encodeNode(elementPath, el)
		if err != nil {
			return nil, nil, err
		}

		disclosures = append(disclosures, nested...)

		if !disclose {
			seq = append(seq, value)

			continue
		}

		d, digest, err := e.discloseElement(value)
		if err != nil {
			return nil, nil, fmt.Errorf("claim %s: %w", elementPath, err)
		}

		disclosures = append(disclosures, d)
		seq = append(seq, elementDigest(digest))
		disclosed++
	}

	if allowDecoys && disclosed > 0 {
		decoys, err := e.decoys()
		if err != nil {
			return nil, nil, err
		}

		for _, decoy := range decoys {
			seq = append(seq, elementDigest(decoy))
		}
	}

	return seq, disclosures, nil
}

func (e *Encoder) discloseMember(name string, value claims.Value) (common.Disclosure, string, error) {
	salt, err := e.engine.Salt()
	if err != nil {
		return "", "", err
	}

	d, err := common.NewObjectDisclosure(salt, name, value)
	if err != nil {
		return "", "", err
	}

	return e.digest(d)
}

func (e *Encoder) discloseElement(value claims.Value) (common.Disclosure, string, error) {
	salt, err := e.engine.Salt()
	if err != nil {
		return "", "", err
	}

	d, err := common.NewArrayDisclosure(salt, value)
	if err != nil {
		return "", "", err
	}

	return e.digest(d)
}

func (e *Encoder) digest(d common.Disclosure) (common.Disclosure, string, error) {
	digest, err := e.engine.Digest(d)
	if err != nil {
		return "", "", common.NewError(common.ErrDisclose, fmt.Errorf("hash disclosure: %w", err)).WithDisclosures(d)
	}

	return d, digest, nil
}

// decoys returns random number of decoy digests within the remaining budget.
func (e *Encoder) decoys() ([]string, error) {
	remaining := e.decoysLimit - e.decoyCount
	if remaining <= 0 {
		return nil, nil
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(remaining+1)))
	if err != nil {
		return nil, common.NewError(common.ErrDisclose, fmt.Errorf("decoy count: %w", err))
	}

	count := int(n.Int64())

	decoys := make([]string, 0, count)

	for i := 0; i < count; i++ {
		decoy, err := e.engine.Decoy()
		if err != nil {
			return nil, err
		}

		decoys = append(decoys, decoy)
	}

	e.decoyCount += count

	return decoys, nil
}

func digestSequence(digests []string) claims.Sequence {
	seq := make(claims.Sequence, len(digests))
	for i, d := range digests {
		seq[i] = claims.String(d)
	}

	return seq
}

func elementDigest(digest string) *claims.Object {
	obj := claims.NewObject()
	obj.Set(common.ArrayElementDigestKey, claims.String(digest))

	return obj
}
