package controller

import (
	"course_platform_backend/internal/service"
	"course_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
	ProgressService   *service.ProgressService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService, progressService *service.ProgressService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService, ProgressService: progressService}
}

// @Summary 报名课程
// @Description 报名指定课程，重复报名直接返回已有记录
// @Tags 报名
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Enrollment} "已报名"
// @Success 201 {object} util.Response{data=model.Enrollment} "新报名"
// @Failure 404 {object} util.Response
// @Router /courses/{id}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
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

	enrollment, created, err := c.EnrollmentService.Enroll(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	if created {
		util.Created(ctx, enrollment)
		return
	}
	util.Success(ctx, enrollment)
}

// @Summary 我的课程
// @Description 当前用户的全部报名记录
// @Tags 报名
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /my-courses [get]
func (c *EnrollmentController) MyCourses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollments, err := c.EnrollmentService.MyCourses(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}

// @Summary 完成课时
// @Description 标记课时已完成并返回最新进度百分比，重复标记不影响结果
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "未报名"
// @Failure 404 {object} util.Response
// @Router /courses/{id}/lessons/{lessonId}/complete [post]
func (c *EnrollmentController) CompleteLesson(ctx *gin.Context) {
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
	lessonID, ok := util.ParseIDParam(ctx, "lessonId")
	if !ok {
		util.BadRequest(ctx, "Invalid lesson ID")
		return
	}

	percentage, err := c.ProgressService.UpdateProgress(ctx.Request.Context(), user.UserID, courseID, lessonID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"courseId":           courseID,
		"lessonId":           lessonID,
		"progressPercentage": percentage,
	})
}

// @Summary 课程进度
// @Description 返回课时列表和已完成课时
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.CourseProgressView}
// @Failure 403 {object} util.Response "未报名"
// @Router /courses/{id}/progress [get]
func (c *EnrollmentController) GetCourseProgress(ctx *gin.Context) {
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

	view, err := c.ProgressService.GetCourseProgress(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, view)
}
