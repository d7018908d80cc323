/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdjwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/google/uuid"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/common/log"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/command"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/internal/cmdutil"
	afgjwt "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/jwt"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claimpath"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/claims"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/holder"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/issuer"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/verifier"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/internal/logutil"
)

var logger = log.New("sdjwt/command")

// Error codes.
const (
	// InvalidRequestErrorCode is typically a code for invalid requests.
	InvalidRequestErrorCode = command.Code(iota + command.SDJWT)
	// IssueError is for failures while issuing SD-JWT.
	IssueError
	// VerifyError is for failures while verifying SD-JWT.
	VerifyError
	// PresentError is for failures while creating presentation.
	PresentError
)

// constants for SD-JWT commands.
const (
	// command name.
	CommandName = "sdjwt"

	// command methods.
	IssueCommandMethod   = "Issue"
	VerifyCommandMethod  = "Verify"
	PresentCommandMethod = "Present"

	// VerifiedTopic is the notifier topic of successful verifications.
	VerifiedTopic = "sdjwt_verified"

	// error messages.
	errEmptyClaims     = "claims are mandatory"
	errEmptySDJWT      = "sdjwt is mandatory"
	errEmptySelection  = "pointers or paths are mandatory"
	errNoIssuerSigner  = "issuer signer is not configured"
	errNoIssuerKey     = "issuer key is mandatory"
	errNoHolderSigner  = "holder signer is not configured"
	errBadHolderKey    = "holder key is not a public key"
	errBadIssuerKey    = "issuer key is not a public key"
	errFailedDecodeReq = "failed request decode : %w"

	defaultHasherCacheSize = 16
)

// Option configures the SD-JWT command.
type Option func(c *Command)

// WithIssuer sets issuer name and signer used by Issue.
func WithIssuer(name string, signer afgjwt.Signer) Option {
	return func(c *Command) {
		c.issuer = name
		c.issuerSigner = signer
	}
}

// WithVerificationKey sets default issuer public key used by Verify.
func WithVerificationKey(key interface{}) Option {
	return func(c *Command) {
		c.verificationKey = key
	}
}

// WithHolderSigner sets signer of key binding JWTs created by Present.
func WithHolderSigner(signer afgjwt.Signer) Option {
	return func(c *Command) {
		c.holderSigner = signer
	}
}

// WithNotifier sets notifier of verification events.
func WithNotifier(notifier command.Notifier) Option {
	return func(c *Command) {
		c.notifier = notifier
	}
}

// WithHasherFactory overrides hasher factory shared by all operations.
func WithHasherFactory(factory common.HasherFactory) Option {
	return func(c *Command) {
		c.hasherFactory = factory
	}
}

// Command contains command operations provided by SD-JWT controller.
type Command struct {
	issuer          string
	issuerSigner    afgjwt.Signer
	verificationKey interface{}
	holderSigner    afgjwt.Signer
	notifier        command.Notifier
	hasherFactory   common.HasherFactory
	now             func() time.Time
}

// New returns new SD-JWT command instance.
func New(opts ...Option) *Command {
	c := &Command{
		hasherFactory: common.CachingHasherFactory(defaultHasherCacheSize),
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetHandlers returns list of all commands supported by this controller command.
func (o *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, IssueCommandMethod, o.Issue),
		cmdutil.NewCommandHandler(CommandName, VerifyCommandMethod, o.Verify),
		cmdutil.NewCommandHandler(CommandName, PresentCommandMethod, o.Present),
	}
}

// Issue creates SD-JWT from plain JSON claims. Claims named by the flat, structured and recursive
// pointers are selectively disclosable, every top level claim is flat when no pointer is given.
func (o *Command) Issue(rw io.Writer, req io.Reader) command.Error {
	var request IssueRequest

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, IssueCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errFailedDecodeReq, err))
	}

	if len(request.Claims) == 0 {
		logutil.LogDebug(logger, CommandName, IssueCommandMethod, errEmptyClaims)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyClaims))
	}

	if o.issuerSigner == nil {
		logutil.LogDebug(logger, CommandName, IssueCommandMethod, errNoIssuerSigner)
		return command.NewExecuteError(IssueError, errors.New(errNoIssuerSigner))
	}

	tree, opts, err := o.prepareIssuance(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, IssueCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	token, err := issuer.New(o.issuer, tree, o.issuerSigner, opts...)
	if err != nil {
		logutil.LogError(logger, CommandName, IssueCommandMethod, err.Error())
		return command.NewExecuteError(IssueError, err)
	}

	disclosures := make([]string, len(token.Disclosures))
	for i, d := range token.Disclosures {
		disclosures[i] = d.String()
	}

	command.WriteNillableResponse(rw, &IssueResponse{
		SDJWT:       token.Serialize(),
		Disclosures: disclosures,
	}, logger)

	logutil.LogDebug(logger, CommandName, IssueCommandMethod, "success")

	return nil
}

func (o *Command) prepareIssuance(request *IssueRequest) (*claims.Tree, []issuer.NewOpt, error) {
	obj, err := claims.ParseObject(request.Claims)
	if err != nil {
		return nil, nil, fmt.Errorf("parse claims: %w", err)
	}

	policy := issuer.FlatPolicy()

	if len(request.Flat)+len(request.Structured)+len(request.Recursive) > 0 {
		flat, err := parsePointers(request.Flat)
		if err != nil {
			return nil, nil, err
		}

		structured, err := parsePointers(request.Structured)
		if err != nil {
			return nil, nil, err
		}

		recursive, err := parsePointers(request.Recursive)
		if err != nil {
			return nil, nil, err
		}

		policy = issuer.PointerPolicy(flat, structured, recursive)
	}

	tree, err := issuer.TreeFromObject(obj, policy)
	if err != nil {
		return nil, nil, err
	}

	now := o.now()

	opts := []issuer.NewOpt{
		issuer.WithIssuedAt(jwt.NewNumericDate(now)),
		issuer.WithJTI(uuid.New().String()),
	}

	if request.HashAlgorithm != "" {
		alg, err := common.ParseHashAlgorithm(request.HashAlgorithm)
		if err != nil {
			return nil, nil, err
		}

		opts = append(opts, issuer.WithHashAlgorithm(alg))
	}

	if request.Decoys {
		opts = append(opts, issuer.WithDecoyDigests(true))
	}

	if request.Subject != "" {
		opts = append(opts, issuer.WithSubject(request.Subject))
	}

	if len(request.Audience) > 0 {
		opts = append(opts, issuer.WithAudience(request.Audience...))
	}

	if request.ExpiresIn > 0 {
		expiry := now.Add(time.Duration(request.ExpiresIn) * time.Second)
		opts = append(opts, issuer.WithExpiry(jwt.NewNumericDate(expiry)))
	}

	if request.HolderKey != nil {
		if !request.HolderKey.IsPublic() {
			return nil, nil, errors.New(errBadHolderKey)
		}

		opts = append(opts, issuer.WithHolderPublicKey(request.HolderKey))
	}

	return tree, opts, nil
}

// Verify checks SD-JWT presentation and returns recreated claims along with disclosures required per
// selectively disclosed claim path.
func (o *Command) Verify(rw io.Writer, req io.Reader) command.Error {
	var request VerifyRequest

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, VerifyCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errFailedDecodeReq, err))
	}

	if request.SDJWT == "" {
		logutil.LogDebug(logger, CommandName, VerifyCommandMethod, errEmptySDJWT)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptySDJWT))
	}

	opts, err := o.verifyOpts(&request)
	if err != nil {
		logutil.LogDebug(logger, CommandName, VerifyCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	verified, err := verifier.Parse(request.SDJWT, opts...)
	if err != nil {
		logutil.LogInfo(logger, CommandName, VerifyCommandMethod, err.Error())
		return command.NewExecuteError(VerifyError, err)
	}

	response, err := verifyResponse(verified, request.JSONPath)
	if err != nil {
		logutil.LogError(logger, CommandName, VerifyCommandMethod, err.Error())
		return command.NewExecuteError(VerifyError, err)
	}

	o.notifyVerified(verified)

	command.WriteNillableResponse(rw, response, logger)

	logutil.LogDebug(logger, CommandName, VerifyCommandMethod, "success")

	return nil
}

func (o *Command) verifyOpts(request *VerifyRequest) ([]verifier.ParseOpt, error) {
	opts := []verifier.ParseOpt{
		verifier.WithHasherFactory(o.hasherFactory),
		verifier.WithKeyBindingRequired(request.KeyBindingRequired),
	}

	switch {
	case request.SkipSignatureVerification:
		opts = append(opts, verifier.WithoutSignatureVerification())
	case request.IssuerKey != nil:
		if !request.IssuerKey.IsPublic() {
			return nil, errors.New(errBadIssuerKey)
		}

		opts = append(opts, verifier.WithVerificationKey(request.IssuerKey.Key))
	case o.verificationKey != nil:
		opts = append(opts, verifier.WithVerificationKey(o.verificationKey))
	default:
		return nil, errors.New(errNoIssuerKey)
	}

	if request.Typ != "" {
		opts = append(opts, verifier.WithExpectedTypHeader(request.Typ))
	}

	if request.Nonce != "" {
		opts = append(opts, verifier.WithExpectedNonce(request.Nonce))
	}

	if request.Audience != "" {
		opts = append(opts, verifier.WithExpectedAudience(request.Audience))
	}

	return opts, nil
}

func verifyResponse(verified *verifier.VerifiedSDJWT, jsonPath string) (*VerifyResponse, error) {
	recreated := verified.Claims()

	raw, err := claims.Marshal(recreated)
	if err != nil {
		return nil, err
	}

	response := &VerifyResponse{
		Claims:      raw,
		Disclosures: []PathDisclosures{},
	}

	verified.Result.Disclosures.Range(func(path claimpath.Path, disclosures []common.Disclosure) bool {
		if len(disclosures) == 0 {
			return true
		}

		pd := PathDisclosures{Path: path, Disclosures: make([]string, len(disclosures))}
		for i, d := range disclosures {
			pd.Disclosures[i] = d.String()
		}

		response.Disclosures = append(response.Disclosures, pd)

		return true
	})

	if jsonPath != "" {
		result, err := claimpath.EvaluateJSONPath(jsonPath, recreated)
		if err != nil {
			return nil, err
		}

		response.Result, err = claims.Marshal(result)
		if err != nil {
			return nil, err
		}
	}

	return response, nil
}

func (o *Command) notifyVerified(verified *verifier.VerifiedSDJWT) {
	if o.notifier == nil {
		return
	}

	event := &VerifiedEvent{
		Disclosures: len(verified.Disclosures),
		Paths:       []string{},
		KeyBinding:  verified.KeyBinding != nil,
	}

	if iss, ok := verified.Claims().Get("iss"); ok {
		event.Issuer, _ = claims.AsString(iss)
	}

	verified.Result.Disclosures.Range(func(path claimpath.Path, disclosures []common.Disclosure) bool {
		if len(disclosures) > 0 {
			event.Paths = append(event.Paths, path.String())
		}

		return true
	})

	msg, err := json.Marshal(event)
	if err != nil {
		logutil.LogError(logger, CommandName, VerifyCommandMethod, err.Error())
		return
	}

	if err = o.notifier.Notify(VerifiedTopic, msg); err != nil {
		logutil.LogError(logger, CommandName, VerifyCommandMethod, "notify: "+err.Error())
	}
}

// Present creates combined format for presentation releasing claims selected by pointers and paths.
func (o *Command) Present(rw io.Writer, req io.Reader) command.Error {
	var request PresentRequest

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, PresentCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errFailedDecodeReq, err))
	}

	if request.SDJWT == "" {
		logutil.LogDebug(logger, CommandName, PresentCommandMethod, errEmptySDJWT)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptySDJWT))
	}

	query, err := selectionQuery(&request)
	if err != nil {
		logutil.LogDebug(logger, CommandName, PresentCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	opts := []holder.Option{holder.WithDisclosureHasherFactory(o.hasherFactory)}

	if request.KeyBinding != "" {
		opts = append(opts, holder.WithKeyBinding(request.KeyBinding))
	}

	if request.Nonce != "" {
		if o.holderSigner == nil {
			logutil.LogDebug(logger, CommandName, PresentCommandMethod, errNoHolderSigner)
			return command.NewValidationError(InvalidRequestErrorCode, errors.New(errNoHolderSigner))
		}

		opts = append(opts, holder.WithKeyBindingInfo(&holder.BindingInfo{
			Payload: holder.BindingPayload{
				Nonce:    request.Nonce,
				Audience: request.Audience,
				IssuedAt: jwt.NewNumericDate(o.now()),
			},
			Signer: o.holderSigner,
		}))
	}

	presentation, err := holder.CreatePresentation(request.SDJWT, query, opts...)
	if err != nil {
		logutil.LogError(logger, CommandName, PresentCommandMethod, err.Error())
		return command.NewExecuteError(PresentError, err)
	}

	command.WriteNillableResponse(rw, &PresentResponse{Presentation: presentation}, logger)

	logutil.LogDebug(logger, CommandName, PresentCommandMethod, "success")

	return nil
}

func selectionQuery(request *PresentRequest) (holder.Query, error) {
	if len(request.Pointers) == 0 && len(request.Paths) == 0 {
		return nil, errors.New(errEmptySelection)
	}

	pointers, err := parsePointers(request.Pointers)
	if err != nil {
		return nil, err
	}

	byPointer := holder.PointersQuery(pointers...)
	byPath := holder.PathsQuery(request.Paths...)

	return func(p claimpath.Path) bool {
		return byPointer(p) || byPath(p)
	}, nil
}

func parsePointers(values []string) ([]claimpath.Pointer, error) {
	pointers := make([]claimpath.Pointer, 0, len(values))

	for _, v := range values {
		p, err := claimpath.ParsePointer(v)
		if err != nil {
			return nil, fmt.Errorf("invalid pointer %q: %w", v, err)
		}

		pointers = append(pointers, p)
	}

	return pointers, nil
}
