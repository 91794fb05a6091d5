package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/rulestore/internal/hierarchy"
	"github.com/mesh-intelligence/rulestore/pkg/types"
)

const errMissingParameters = "Missing parameters"

// GetRules handles GET /api/rules. The version is the ETag; a matching
// If-None-Match yields 304 without building a snapshot.
func GetRules(store types.RuleStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cached, ok := parseETag(c.GetHeader("If-None-Match")); ok {
			rules, changed, err := store.RulesIfChanged(c.Request.Context(), cached)
			if err != nil {
				serverError(c, err)
				return
			}
			if !changed {
				c.Header("ETag", formatETag(cached))
				c.Status(http.StatusNotModified)
				return
			}
			c.Header("ETag", formatETag(rules.VersionID))
			c.JSON(http.StatusOK, rules)
			return
		}

		rules, err := store.Rules(c.Request.Context())
		if err != nil {
			serverError(c, err)
			return
		}
		c.Header("ETag", formatETag(rules.VersionID))
		c.JSON(http.StatusOK, rules)
	}
}

// GetTree handles GET /api/rules/tree.
func GetTree(store types.RuleStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		rules, err := store.Rules(c.Request.Context())
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"version_id": rules.VersionID,
			"tree":       hierarchy.BuildTree(rules),
		})
	}
}

// GetExpand handles GET /api/rules/expand?q=term&q=term.
func GetExpand(store types.RuleStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		inputs := c.QueryArray("q")
		if len(inputs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errMissingParameters})
			return
		}
		rules, err := store.Rules(c.Request.Context())
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"version_id": rules.VersionID,
			"keywords":   hierarchy.Expand(rules, inputs),
		})
	}
}

// Health handles GET /healthz.
func Health(store types.RuleStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := store.Version(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version_id": v.VersionID})
	}
}

// Write returns the handler for one POST route. T is the request body type.
func Write[T writeRequest](store types.RuleStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req T
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if err := requestValidate.Struct(req); err != nil {
			badRequest(c, err)
			return
		}

		env := req.envelope()
		res := store.TryWrite(c.Request.Context(), *env.BaseVersion, env.ClientID, req.command())
		writeResult(c, res)
	}
}

func writeResult(c *gin.Context, res types.WriteResult) {
	switch res.Status {
	case types.StatusOK:
		body := outcomeFields(res.Op, res.Outcome)
		body["success"] = true
		body["version_id"] = res.VersionID
		c.Header("ETag", formatETag(res.VersionID))
		c.JSON(http.StatusOK, body)
	case types.StatusConflict:
		c.JSON(http.StatusConflict, gin.H{
			"success":          false,
			"error":            "conflict",
			"version_id":       res.VersionID,
			"latest_data":      res.Conflict.Latest,
			"unique_modifiers": res.Conflict.UniqueModifiers,
		})
	case types.StatusInvalid:
		badRequest(c, res.Err)
	case types.StatusRejected:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": res.Err.Error()})
	default:
		serverError(c, res.Err)
	}
}

// outcomeFields picks the response fields each command reports.
func outcomeFields(op string, o types.Outcome) gin.H {
	switch op {
	case types.OpAddGroup:
		return gin.H{"group_id": o.GroupID}
	case types.OpToggleGroup:
		return gin.H{"affected": o.Affected, "is_enabled": o.Enabled}
	case types.OpDeleteGroup:
		return gin.H{"deleted_count": o.Deleted}
	case types.OpBatchGroups:
		return gin.H{"affected": o.Affected, "deleted_count": o.Deleted}
	case types.OpMoveGroups:
		errs := o.MoveErrors
		if errs == nil {
			errs = []types.MoveError{}
		}
		return gin.H{"moved": o.Moved, "errors": errs}
	default:
		return gin.H{"affected": o.Affected}
	}
}

func badRequest(c *gin.Context, err error) {
	body := gin.H{"success": false, "error": errMissingParameters}
	if err != nil {
		body["detail"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

func serverError(c *gin.Context, err error) {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
		_ = c.Error(err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": msg})
}

// parseETag accepts a bare version, a quoted version, or a weak validator.
func parseETag(header string) (int64, bool) {
	s := strings.TrimSpace(header)
	if s == "" {
		return 0, false
	}
	s = strings.TrimPrefix(s, "W/")
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatETag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}
