package controller

import (
	"errors"
	"flashdeck_backend/internal/model"
	"flashdeck_backend/internal/service"
	"flashdeck_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	ProgressService *service.ProgressService
}

func NewAnalyticsController(progressService *service.ProgressService) *AnalyticsController {
	return &AnalyticsController{ProgressService: progressService}
}

type recordProgressRequest struct {
	SetID  string `json:"setId"`
	CardID string `json:"cardId"`
	Status string `json:"status"`
}

// @Summary 记录一次答题
// @Description 为当前用户追加一条学习事件（correct/incorrect/skipped）
// @Tags 分析
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body recordProgressRequest true "答题结果"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /analytics/progress [post]
func (c *AnalyticsController) SaveProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req recordProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	fields := make(map[string]string)
	if req.SetID == "" {
		fields["setId"] = "Set ID is required"
	}
	if req.CardID == "" {
		fields["cardId"] = "Card ID is required"
	}
	if req.Status == "" {
		fields["status"] = "Status is required"
	}
	if len(fields) > 0 {
		util.ValidationFailed(ctx, fields)
		return
	}

	event, err := c.ProgressService.Record(user.UserID, req.SetID, req.CardID, model.StudyStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidStatus):
			util.ValidationFailed(ctx, map[string]string{"status": err.Error()})
		case errors.Is(err, util.ErrSetNotFound), errors.Is(err, util.ErrCardNotFound):
			util.NotFound(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"progress": event})
}

// @Summary 获取各卡片集进度
// @Description 每个卡片集一行，含 total_cards、已学/答对/答错数和每卡状态
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /analytics/progress [get]
func (c *AnalyticsController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressService.GetSetProgress(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"progress": progress})
}

// @Summary 获取每日学习量
// @Description 最近 30 个有学习记录的日期及当日事件数，按日期降序
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /analytics/daily [get]
func (c *AnalyticsController) GetDailyActivity(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	activity, err := c.ProgressService.GetDailyActivity(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"activity": activity})
}

// @Summary 获取主题维度进度
// @Description 按标题第一个冒号前的主题聚合各集合进度
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /analytics/topics [get]
func (c *AnalyticsController) GetTopicProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	topics, err := c.ProgressService.GetTopicProgress(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"topics": topics})
}

// @Summary 获取最近学过的卡片
// @Description 按卡片去重后的最近 N 张，附带卡面内容和集合标题
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "数量 (默认10)" default(10)
// @Success 200 {object} util.Response
// @Router /analytics/recent [get]
func (c *AnalyticsController) GetRecentCards(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	limit := util.ParseLimit(ctx.Query("limit"), 10)

	cards, err := c.ProgressService.GetRecentCards(user.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"cards": cards})
}
