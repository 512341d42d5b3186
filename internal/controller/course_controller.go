package controller

import (
	"course_platform_backend/internal/service"
	"course_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CatalogService *service.CatalogService
}

func NewCourseController(catalogService *service.CatalogService) *CourseController {
	return &CourseController{CatalogService: catalogService}
}

// @Summary 课程列表
// @Description 获取所有已启用的课程，按发布时间倒序，登录用户附带是否已报名
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response{data=[]service.CourseSummary}
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CatalogService.ListCourses(ctx.Request.Context(), util.UserIDFromContext(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary 搜索课程
// @Description 按课程名称搜索（不区分大小写），关键字为空时返回空列表
// @Tags 课程
// @Produce json
// @Param q query string false "关键字"
// @Success 200 {object} util.Response{data=[]service.CourseSummary}
// @Router /courses/search [get]
func (c *CourseController) SearchCourses(ctx *gin.Context) {
	courses, err := c.CatalogService.Search(ctx.Request.Context(), util.UserIDFromContext(ctx), ctx.Query("q"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary 课程详情
// @Description 课程信息、课时、题目数量、报名人数，已报名用户附带进度
// @Tags 课程
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.CourseDetail}
// @Failure 404 {object} util.Response
// @Router /courses/{id} [get]
func (c *CourseController) GetCourseDetail(ctx *gin.Context) {
	courseID, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	detail, err := c.CatalogService.GetCourseDetail(ctx.Request.Context(), util.UserIDFromContext(ctx), courseID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}
