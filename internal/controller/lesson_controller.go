package controller

import (
	"course_platform_backend/internal/service"
	"course_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	MediaService *service.LessonMediaService
}

func NewLessonController(mediaService *service.LessonMediaService) *LessonController {
	return &LessonController{MediaService: mediaService}
}

// @Summary 上传课时视频
// @Description 教师或管理员上传课时视频，自动读取时长（分钟）
// @Tags 课时
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "课时ID"
// @Param file formData file true "视频文件"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /instructor/lessons/{lessonId}/video [post]
func (c *LessonController) UploadVideo(ctx *gin.Context) {
	lessonID, ok := util.ParseIDParam(ctx, "lessonId")
	if !ok {
		util.BadRequest(ctx, "Invalid lesson ID")
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "File is required")
		return
	}

	lesson, err := c.MediaService.UploadLessonVideo(ctx.Request.Context(), lessonID, file)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}
