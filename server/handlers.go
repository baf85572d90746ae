package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/engine"
	"github.com/tranvictor/feedme/ens"
	"github.com/tranvictor/feedme/networks"
	"github.com/tranvictor/feedme/quote"
	"github.com/tranvictor/feedme/splits"
	"github.com/tranvictor/feedme/util/explorers"
)

// statusOf maps an engine error to the HTTP status reported for it.
func statusOf(err error) int {
	switch {
	case errors.Is(err, engine.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, ens.ErrNameNotFound),
		errors.Is(err, ens.ErrNotConfigured),
		errors.Is(err, quote.ErrNoRoute):
		return http.StatusNotFound
	case errors.Is(err, quote.ErrInsufficientLiquidity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrNotAvailable):
		return http.StatusNotImplemented
	case errors.Is(err, quote.ErrQuoteFailed),
		errors.Is(err, explorers.ErrProviderUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, engine.ErrEmptyName),
		errors.Is(err, engine.ErrInvalidConfig),
		errors.Is(err, splits.ErrInvalidSplits),
		errors.Is(err, quote.ErrInvalidAmount),
		errors.Is(err, quote.ErrInvalidIntent),
		errors.Is(err, quote.ErrNoSender),
		errors.Is(err, quote.ErrUnresolvedSplits),
		errors.Is(err, networks.ErrNetworkNotFound),
		errors.Is(err, networks.ErrTokenNotSupported),
		errors.Is(err, networks.ErrProtocolNotSupported):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusOf(err)
	entry := s.l.WithFields(logrus.Fields{
		"path":   c.FullPath(),
		"status": status,
		"error":  err.Error(),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func addressParam(c *gin.Context, key string) (ethcommon.Address, bool) {
	raw := c.Param(key)
	if !common.IsAddress(raw) {
		badRequest(c, "invalid address: "+raw)
		return ethcommon.Address{}, false
	}
	return ethcommon.HexToAddress(raw), true
}

// chainQuery reads the chain query parameter as either a chain id or a
// network name. An absent parameter is 0.
func chainQuery(c *gin.Context) (uint64, error) {
	raw := c.Query("chain")
	if raw == "" {
		return 0, nil
	}
	if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
		if _, err := networks.GetNetworkByID(id); err != nil {
			return 0, err
		}
		return id, nil
	}
	n, err := networks.GetNetwork(raw)
	if err != nil {
		return 0, err
	}
	return n.GetChainID(), nil
}

type networkView struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	ChainID     uint64   `json:"chainId"`
	Native      string   `json:"nativeToken"`
	Tokens      []string `json:"tokens"`
}

func (s *Server) listNetworks(c *gin.Context) {
	views := []networkView{}
	for _, n := range networks.GetSupportedNetworks() {
		views = append(views, networkView{
			Name:        n.GetName(),
			DisplayName: n.GetDisplayName(),
			ChainID:     n.GetChainID(),
			Native:      n.GetNativeTokenSymbol(),
			Tokens:      n.SupportedTokens(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"networks": views})
}

func (s *Server) resolveConfig(c *gin.Context) {
	nc, err := s.engine.ResolveConfig(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nc)
}

type ownerView struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Owner string `json:"owner,omitempty"`
	Known bool   `json:"known"`
}

func (s *Server) resolveOwner(c *gin.Context) {
	o, err := s.engine.ResolveOwner(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	view := ownerView{
		Name:  ens.Normalize(c.Param("name")),
		Kind:  o.Kind.String(),
		Known: o.Known(),
	}
	if o.Known() {
		view.Owner = o.Owner.Hex()
	}
	c.JSON(http.StatusOK, view)
}

type configTxRequest struct {
	From   string            `json:"from" binding:"required"`
	Config ens.PaymentConfig `json:"config"`
}

// buildConfigTx returns the unsigned write for the caller to sign.
func (s *Server) buildConfigTx(c *gin.Context) {
	var req configTxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !common.IsAddress(req.From) {
		badRequest(c, "invalid address: "+req.From)
		return
	}
	tx, err := s.engine.BuildConfigTx(
		c.Request.Context(),
		c.Param("name"),
		req.Config,
		ethcommon.HexToAddress(req.From),
	)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

func (s *Server) paymentIntent(c *gin.Context) {
	var sender ethcommon.Address
	if raw := c.Query("sender"); raw != "" {
		if !common.IsAddress(raw) {
			badRequest(c, "invalid address: "+raw)
			return
		}
		sender = ethcommon.HexToAddress(raw)
	}
	in, nc, err := s.engine.PaymentIntent(
		c.Request.Context(),
		c.Param("name"),
		c.Query("fromChain"),
		c.Query("fromToken"),
		c.Query("amount"),
		sender,
	)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"intent": in, "config": nc})
}

func (s *Server) ownedNames(c *gin.Context) {
	owner, ok := addressParam(c, "address")
	if !ok {
		return
	}
	names, err := s.engine.OwnedNames(c.Request.Context(), owner)
	if err != nil {
		s.fail(c, err)
		return
	}
	if names == nil {
		names = []ens.OwnedName{}
	}
	c.JSON(http.StatusOK, gin.H{"names": names})
}

func (s *Server) recentFeeders(c *gin.Context) {
	recipient, ok := addressParam(c, "address")
	if !ok {
		return
	}
	chainID, err := chainQuery(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	fs, err := s.engine.GetRecentFeeders(c.Request.Context(), recipient.Hex(), chainID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feeders": fs})
}

type validateSplitsRequest struct {
	Splits string `json:"splits"`
}

type validateSplitsResponse struct {
	Splits          []splits.Split `json:"splits"`
	IsValid         bool           `json:"isValid"`
	TotalPercentage int            `json:"totalPercentage"`
	Error           string         `json:"error,omitempty"`
}

// validateSplits always answers 200: a rejected set is a result, not a
// failed request.
func (s *Server) validateSplits(c *gin.Context) {
	var req validateSplitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	parsed := splits.Parse(req.Splits)
	resp := validateSplitsResponse{
		Splits:          parsed.Splits,
		IsValid:         parsed.IsValid,
		TotalPercentage: parsed.TotalPercentage,
		Error:           parsed.ErrorMessage(),
	}
	if parsed.IsValid {
		v := s.engine.ValidateSplits(parsed.Splits)
		resp.IsValid = v.IsValid
		resp.Error = v.ErrorMessage()
	}
	c.JSON(http.StatusOK, resp)
}

type resolveSplitsRequest struct {
	Splits []splits.Split `json:"splits" binding:"required"`
}

func (s *Server) resolveSplits(c *gin.Context) {
	var req resolveSplitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if v := s.engine.ValidateSplits(req.Splits); !v.IsValid {
		s.fail(c, v.Err())
		return
	}
	resolved, err := s.engine.ResolveSplits(c.Request.Context(), req.Splits)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"splits": resolved})
}

type quoteResponse struct {
	Quote    *quote.Quote      `json:"quote"`
	Approval *common.TxRequest `json:"approval,omitempty"`
}

// getQuote prices an intent. The response carries the approval the sender
// must submit first, when one is needed.
func (s *Server) getQuote(c *gin.Context) {
	var in quote.Intent
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	q, err := s.engine.GetQuote(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := quoteResponse{Quote: q}
	if q != nil && common.IsAddress(in.Sender) {
		resp.Approval, err = s.engine.ApprovalTx(c.Request.Context(), q, ethcommon.HexToAddress(in.Sender))
		if err != nil {
			s.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}
