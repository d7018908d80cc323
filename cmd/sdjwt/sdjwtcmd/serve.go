/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdjwtcmd

import (
	"crypto/subtle"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller"
	cmdsdjwt "github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/controller/command/sdjwt"
	"github.com/eu-digital-identity-wallet/eudi-lib-sdjwt-swift-sub000/pkg/doc/sdjwt/common"
)

const (
	// api host flag.
	hostFlagName      = "api-host"
	hostEnvKey        = "SDJWT_API_HOST"
	hostFlagShorthand = "a"
	hostFlagUsage     = "Host Name:Port." +
		" Alternatively, this can be set with the following environment variable: " + hostEnvKey

	// api token flag.
	tokenFlagName      = "api-token"
	tokenEnvKey        = "SDJWT_API_TOKEN" // nolint:gosec
	tokenFlagShorthand = "t"
	tokenFlagUsage     = "Check for bearer token in the authorization header (optional)." +
		" Alternatively, this can be set with the following environment variable: " + tokenEnvKey

	// webhook url flag.
	webhookFlagName      = "webhook-url"
	webhookEnvKey        = "SDJWT_WEBHOOK_URL"
	webhookFlagShorthand = "w"
	webhookFlagUsage     = "URL to send verification notifications to." +
		" This flag can be repeated, allowing for multiple listeners." +
		" Alternatively, this can be set with the following environment variable (in CSV format): " + webhookEnvKey

	tlsCertFileFlagName  = "tls-cert-file"
	tlsCertFileEnvKey    = "SDJWT_TLS_CERT_FILE"
	tlsCertFileFlagUsage = "tls certificate file." +
		" Alternatively, this can be set with the following environment variable: " + tlsCertFileEnvKey

	tlsKeyFileFlagName  = "tls-key-file"
	tlsKeyFileEnvKey    = "SDJWT_TLS_KEY_FILE"
	tlsKeyFileFlagUsage = "tls key file." +
		" Alternatively, this can be set with the following environment variable: " + tlsKeyFileEnvKey
)

var errMissingHost = errors.New("host not provided")

type server interface {
	ListenAndServe(host string, router http.Handler, certFile, keyFile string) error
}

// HTTPServer represents an actual server implementation.
type HTTPServer struct{}

// ListenAndServe starts the server using the standard Go HTTP server implementation.
func (s *HTTPServer) ListenAndServe(host string, router http.Handler, certFile, keyFile string) error {
	if certFile != "" && keyFile != "" {
		return http.ListenAndServeTLS(host, certFile, keyFile, router)
	}

	return http.ListenAndServe(host, router) //nolint:gosec
}

type serverParameters struct {
	server      server
	host        string
	token       string
	webhookURLs []string
	tlsCertFile string
	tlsKeyFile  string
	sdjwtOpts   []cmdsdjwt.Option
}

// ServeCmd returns the command starting SD-JWT REST API.
func ServeCmd(server server) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start SD-JWT REST API",
		Long:  `Start REST API serving issue, verify and present operations along with websocket notifications`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parameters, err := serveParams(cmd)
			if err != nil {
				return err
			}

			parameters.server = server

			return startServer(parameters)
		},
	}

	serveCmd.Flags().StringP(hostFlagName, hostFlagShorthand, "", hostFlagUsage)
	serveCmd.Flags().StringP(tokenFlagName, tokenFlagShorthand, "", tokenFlagUsage)
	serveCmd.Flags().StringSliceP(webhookFlagName, webhookFlagShorthand, []string{}, webhookFlagUsage)
	serveCmd.Flags().String(tlsCertFileFlagName, "", tlsCertFileFlagUsage)
	serveCmd.Flags().String(tlsKeyFileFlagName, "", tlsKeyFileFlagUsage)
	serveCmd.Flags().String(issuerFlagName, "", issuerFlagUsage)
	serveCmd.Flags().StringP(keyFlagName, keyFlagShorthand, "", keyFlagUsage)
	serveCmd.Flags().String(verificationKeyFlagName, "", verificationKeyFlagUsage)
	serveCmd.Flags().String(holderKeyFlagName, "", holderKeyFlagUsage)
	serveCmd.Flags().String(typFlagName, "", typFlagUsage)

	return serveCmd
}

func serveParams(cmd *cobra.Command) (*serverParameters, error) { //nolint:funlen
	host, err := getUserSetVar(cmd, hostFlagName, hostEnvKey, false)
	if err != nil {
		return nil, err
	}

	token, err := getUserSetVar(cmd, tokenFlagName, tokenEnvKey, true)
	if err != nil {
		return nil, err
	}

	webhookURLs, err := getUserSetVars(cmd, webhookFlagName, webhookEnvKey, true)
	if err != nil {
		return nil, err
	}

	tlsCertFile, err := getUserSetVar(cmd, tlsCertFileFlagName, tlsCertFileEnvKey, true)
	if err != nil {
		return nil, err
	}

	tlsKeyFile, err := getUserSetVar(cmd, tlsKeyFileFlagName, tlsKeyFileEnvKey, true)
	if err != nil {
		return nil, err
	}

	opts, err := serverKeys(cmd)
	if err != nil {
		return nil, err
	}

	return &serverParameters{
		host:        host,
		token:       token,
		webhookURLs: webhookURLs,
		tlsCertFile: tlsCertFile,
		tlsKeyFile:  tlsKeyFile,
		sdjwtOpts:   opts,
	}, nil
}

// serverKeys loads optional issuer, verification and holder keys.
func serverKeys(cmd *cobra.Command) ([]cmdsdjwt.Option, error) {
	var opts []cmdsdjwt.Option

	issuer, err := getUserSetVar(cmd, issuerFlagName, issuerEnvKey, true)
	if err != nil {
		return nil, err
	}

	typ, err := getUserSetVar(cmd, typFlagName, typEnvKey, true)
	if err != nil {
		return nil, err
	}

	keyPath, err := getUserSetVar(cmd, keyFlagName, keyEnvKey, true)
	if err != nil {
		return nil, err
	}

	if keyPath != "" {
		jwk, err := loadJWK(keyPath)
		if err != nil {
			return nil, err
		}

		signer, err := newSigner(jwk, typ)
		if err != nil {
			return nil, errors.Wrap(err, "issuer key")
		}

		opts = append(opts, cmdsdjwt.WithIssuer(issuer, signer), cmdsdjwt.WithVerificationKey(jwk.Public().Key))
	}

	verificationKeyPath, err := getUserSetVar(cmd, verificationKeyFlagName, verificationKeyEnvKey, true)
	if err != nil {
		return nil, err
	}

	if verificationKeyPath != "" {
		jwk, err := loadJWK(verificationKeyPath)
		if err != nil {
			return nil, err
		}

		opts = append(opts, cmdsdjwt.WithVerificationKey(jwk.Public().Key))
	}

	holderKeyPath, err := getUserSetVar(cmd, holderKeyFlagName, holderKeyEnvKey, true)
	if err != nil {
		return nil, err
	}

	if holderKeyPath != "" {
		jwk, err := loadJWK(holderKeyPath)
		if err != nil {
			return nil, err
		}

		signer, err := newSigner(jwk, common.KeyBindingJWTType)
		if err != nil {
			return nil, errors.Wrap(err, "holder key")
		}

		opts = append(opts, cmdsdjwt.WithHolderSigner(signer))
	}

	return opts, nil
}

func validateAuthorizationBearerToken(w http.ResponseWriter, r *http.Request, token string) bool {
	actHdr := r.Header.Get("Authorization")
	expHdr := "Bearer " + token

	if subtle.ConstantTimeCompare([]byte(actHdr), []byte(expHdr)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorised.\n")) // nolint:gosec,errcheck

		return false
	}

	return true
}

func authorizationMiddleware(token string) mux.MiddlewareFunc {
	middleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validateAuthorizationBearerToken(w, r, token) {
				next.ServeHTTP(w, r)
			}
		})
	}

	return middleware
}

func newRouter(parameters *serverParameters) http.Handler {
	// get all HTTP REST API handlers available for controller API
	handlers := controller.GetRESTHandlers(
		controller.WithWebhookURLs(parameters.webhookURLs...),
		controller.WithSDJWTOptions(parameters.sdjwtOpts...))

	router := mux.NewRouter()

	if parameters.token != "" {
		router.Use(authorizationMiddleware(parameters.token))
	}

	for _, handler := range handlers {
		router.HandleFunc(handler.Path(), handler.Handle()).Methods(handler.Method())
	}

	return cors.New(
		cors.Options{
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodHead},
			AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		},
	).Handler(router)
}

func startServer(parameters *serverParameters) error {
	if parameters.host == "" {
		return errMissingHost
	}

	logger.Infof("Starting SD-JWT rest on host [%s]", parameters.host)

	err := parameters.server.ListenAndServe(parameters.host, newRouter(parameters),
		parameters.tlsCertFile, parameters.tlsKeyFile)
	if err != nil {
		return errors.Wrapf(err, "failed to start SD-JWT rest on port [%s]", parameters.host)
	}

	return nil
}
