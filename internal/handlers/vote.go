package handlers

import (
	"errors"
	"net/http"

	"crimewatch/internal/middleware"
	"crimewatch/internal/models"
	"crimewatch/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type VoteHandler struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewVoteHandler(conn *gorm.DB, logger *logrus.Logger) *VoteHandler {
	return &VoteHandler{db: conn, logger: logger}
}

// VoterIdentity is the dedup key for voting: an authenticated user or an
// anonymous IP, never both.
type VoterIdentity struct {
	UserID *uint
	IP     string
}

var errDuplicateVote = errors.New("You have already voted for this crime")

type voteRequest struct {
	VoteType string `json:"vote_type" binding:"required"`
}

// Cast records a vote for a crime. Authenticated callers vote once per
// report, anonymous callers once per report per IP.
func (h *VoteHandler) Cast(c *gin.Context) {
	crimeID := uint(utils.StringToInt(c.Param("id")))
	if crimeID == 0 {
		errorJSON(c, http.StatusBadRequest, "invalid crime id")
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	voter := VoterIdentity{IP: c.ClientIP()}
	if user := middleware.CurrentUser(c); user != nil {
		voter.UserID = &user.ID
	}

	vote, err := h.castVote(crimeID, voter, req.VoteType)
	if err != nil {
		if errors.Is(err, errDuplicateVote) {
			errorJSON(c, http.StatusBadRequest, err.Error())
			return
		}
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, vote)
}

// castVote dispatches to the ledger matching the identity. The pre-check
// gives the friendly error on retries; the composite unique index is what
// actually guarantees one vote per (crime, identity) under concurrency, and a
// duplicate-key insert maps to the same error.
func (h *VoteHandler) castVote(crimeID uint, voter VoterIdentity, voteType string) (interface{}, error) {
	if voter.UserID != nil {
		var existing models.Vote
		err := h.db.Where("crime_id = ? AND user_id = ?", crimeID, *voter.UserID).First(&existing).Error
		if err == nil {
			return nil, errDuplicateVote
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		vote := models.Vote{CrimeID: crimeID, UserID: *voter.UserID, VoteType: voteType}
		if err := h.db.Create(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, errDuplicateVote
			}
			return nil, err
		}
		return vote, nil
	}

	var existing models.AnonymousVote
	err := h.db.Where("crime_id = ? AND ip_address = ?", crimeID, voter.IP).First(&existing).Error
	if err == nil {
		return nil, errDuplicateVote
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	vote := models.AnonymousVote{CrimeID: crimeID, IPAddress: voter.IP, VoteType: voteType}
	if err := h.db.Create(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errDuplicateVote
		}
		return nil, err
	}
	return vote, nil
}

type voteTypeCount struct {
	VoteType string
	Count    int64
}

// Tally aggregates vote counts per type, split by identity class plus a
// combined total. A nonexistent crime simply yields empty maps.
func (h *VoteHandler) Tally(c *gin.Context) {
	crimeID := c.Param("id")

	authCounts, err := h.groupVotes(&models.Vote{}, crimeID)
	if err != nil {
		internalError(c, err)
		return
	}
	anonCounts, err := h.groupVotes(&models.AnonymousVote{}, crimeID)
	if err != nil {
		internalError(c, err)
		return
	}

	total := make(map[string]int64)
	for voteType, count := range authCounts {
		total[voteType] += count
	}
	for voteType, count := range anonCounts {
		total[voteType] += count
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": authCounts,
		"anonymous":     anonCounts,
		"total":         total,
	})
}

func (h *VoteHandler) groupVotes(model interface{}, crimeID string) (map[string]int64, error) {
	var rows []voteTypeCount
	err := h.db.Model(model).
		Select("vote_type, COUNT(*) as count").
		Where("crime_id = ?", crimeID).
		Group("vote_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.VoteType] = row.Count
	}
	return counts, nil
}
