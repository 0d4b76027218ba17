package controller

import (
	"errors"
	"flashdeck_backend/internal/service"
	"flashdeck_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FlashcardController struct {
	FlashcardService *service.FlashcardService
	StudyService     *service.StudyService
}

func NewFlashcardController(flashcardService *service.FlashcardService, studyService *service.StudyService) *FlashcardController {
	return &FlashcardController{
		FlashcardService: flashcardService,
		StudyService:     studyService,
	}
}

type setRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type setUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type cardRequest struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type cardUpdateRequest struct {
	Front *string `json:"front"`
	Back  *string `json:"back"`
}

// @Summary 创建卡片集
// @Tags 卡片
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body setRequest true "集合信息"
// @Success 201 {object} util.Response
// @Router /flashcards/sets [post]
func (c *FlashcardController) CreateSet(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req setRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.Title == "" {
		util.ValidationFailed(ctx, map[string]string{"title": "Title is required"})
		return
	}

	set, err := c.FlashcardService.CreateSet(user.UserID, req.Title, req.Description)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, gin.H{"set": set})
}

// @Summary 卡片集列表
// @Tags 卡片
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /flashcards/sets [get]
func (c *FlashcardController) GetUserSets(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sets, err := c.FlashcardService.ListSets(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"sets": sets})
}

// @Summary 卡片集详情（含卡片）
// @Tags 卡片
// @Produce json
// @Security ApiKeyAuth
// @Param setId path string true "集合ID"
// @Success 200 {object} util.Response
// @Router /flashcards/sets/{setId} [get]
func (c *FlashcardController) GetSetByID(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	set, err := c.FlashcardService.GetSetWithCards(ctx.Request.Context(), ctx.Param("setId"), user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrSetNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"set": set})
}

// @Summary 更新卡片集
// @Tags 卡片
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param setId path string true "集合ID"
// @Param body body setUpdateRequest true "更新字段"
// @Success 200 {object} util.Response
// @Router /flashcards/sets/{setId} [put]
func (c *FlashcardController) UpdateSet(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req setUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	set, err := c.FlashcardService.UpdateSet(ctx.Request.Context(), ctx.Param("setId"), user.UserID, req.Title, req.Description)
	if err != nil {
		if errors.Is(err, util.ErrSetNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, gin.H{"set": set})
}

// @Summary 删除卡片集
// @Tags 卡片
// @Produce json
// @Security ApiKeyAuth
// @Param setId path string true "集合ID"
// @Success 200 {object} util.Response
// @Router /flashcards/sets/{setId} [delete]
func (c *FlashcardController) DeleteSet(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	set, err := c.FlashcardService.DeleteSet(ctx.Request.Context(), ctx.Param("setId"), user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrSetNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"set": set})
}

// @Summary 新建卡片
// @Tags 卡片
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param setId path string true "集合ID"
// @Param body body cardRequest true "卡片内容"
// @Success 201 {object} util.Response
// @Router /flashcards/sets/{setId}/cards [post]
func (c *FlashcardController) CreateCard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req cardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	card, err := c.FlashcardService.CreateCard(ctx.Request.Context(), ctx.Param("setId"), user.UserID, req.Front, req.Back)
	if err != nil {
		if errors.Is(err, util.ErrSetNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, gin.H{"card": card})
}

// @Summary 更新卡片
// @Tags 卡片
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param cardId path string true "卡片ID"
// @Param body body cardUpdateRequest true "更新字段"
// @Success 200 {object} util.Response
// @Router /flashcards/cards/{cardId} [put]
func (c *FlashcardController) UpdateCard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req cardUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	card, err := c.FlashcardService.UpdateCard(ctx.Request.Context(), ctx.Param("cardId"), user.UserID, req.Front, req.Back)
	if err != nil {
		if errors.Is(err, util.ErrCardNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, gin.H{"card": card})
}

// @Summary 删除卡片
// @Tags 卡片
// @Produce json
// @Security ApiKeyAuth
// @Param cardId path string true "卡片ID"
// @Success 200 {object} util.Response
// @Router /flashcards/cards/{cardId} [delete]
func (c *FlashcardController) DeleteCard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	card, err := c.FlashcardService.DeleteCard(ctx.Request.Context(), ctx.Param("cardId"), user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrCardNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"card": card})
}

// @Summary 学习会话取卡
// @Description random 模式返回一次性洗好的全排列，sequential 按创建顺序
// @Tags 卡片
// @Produce json
// @Security ApiKeyAuth
// @Param setId path string true "集合ID"
// @Param mode query string false "random 或 sequential" default(random)
// @Param limit query int false "截断数量 (0 表示全部)"
// @Success 200 {object} util.Response
// @Router /flashcards/sets/{setId}/study [get]
func (c *FlashcardController) StudySession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	mode := service.StudyMode(ctx.DefaultQuery("mode", string(service.ModeRandom)))
	limit := util.ParseLimit(ctx.Query("limit"), 0)

	cards, err := c.StudyService.SelectSession(user.UserID, ctx.Param("setId"), mode, limit)
	if err != nil {
		if errors.Is(err, util.ErrSetNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, gin.H{"cards": cards})
}
