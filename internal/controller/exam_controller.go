package controller

import (
	"course_platform_backend/internal/service"
	"course_platform_backend/internal/util"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxFormMemory = 8 << 20

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

func submittedForm(ctx *gin.Context) (url.Values, error) {
	if strings.HasPrefix(ctx.ContentType(), "multipart/form-data") {
		if err := ctx.Request.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, err
		}
		return url.Values(ctx.Request.MultipartForm.Value), nil
	}
	if err := ctx.Request.ParseForm(); err != nil {
		return nil, err
	}
	return ctx.Request.PostForm, nil
}

// @Summary 开始考试
// @Description 开始课程考试，已有进行中的考试时直接返回
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.ExamSession}
// @Success 201 {object} util.Response{data=model.ExamSession}
// @Failure 403 {object} util.Response "未报名"
// @Router /courses/{id}/exam/start [post]
func (c *ExamController) StartExam(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	session, created, err := c.ExamService.StartSession(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	if created {
		util.Created(ctx, session)
		return
	}
	util.Success(ctx, session)
}

// @Summary 提交考试
// @Description 表单字段 choice_* 的值为选中的选项ID，无效值会被忽略
// @Tags 考试
// @Accept x-www-form-urlencoded
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 201 {object} util.Response{data=service.SubmitResult}
// @Failure 403 {object} util.Response "未报名"
// @Failure 404 {object} util.Response
// @Router /courses/{id}/submit [post]
func (c *ExamController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	form, err := submittedForm(ctx)
	if err != nil {
		util.BadRequest(ctx, "Invalid form data")
		return
	}

	result, err := c.ExamService.Submit(ctx.Request.Context(), user.UserID, courseID, form)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// @Summary 考试结果
// @Description 根据提交的选项重新判分，返回每题是否正确
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param submissionId path int true "提交ID"
// @Success 200 {object} util.Response{data=service.SubmissionView}
// @Failure 404 {object} util.Response
// @Router /courses/{id}/submissions/{submissionId} [get]
func (c *ExamController) GetResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}
	submissionID, ok := util.ParseIDParam(ctx, "submissionId")
	if !ok {
		util.BadRequest(ctx, "Invalid submission ID")
		return
	}

	view, err := c.ExamService.GetResult(ctx.Request.Context(), user.UserID, courseID, submissionID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, view)
}
