package controller

import (
	"course_platform_backend/internal/service"
	"course_platform_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertificateService *service.CertificateService
}

func NewCertificateController(certificateService *service.CertificateService) *CertificateController {
	return &CertificateController{CertificateService: certificateService}
}

// @Summary 领取证书
// @Description 课程完成后签发结业证书，已签发时返回原证书
// @Tags 证书
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Certificate} "已签发"
// @Success 201 {object} util.Response{data=model.Certificate} "新签发"
// @Failure 403 {object} util.Response "未报名"
// @Failure 412 {object} util.Response "课程未完成"
// @Router /courses/{id}/certificate [post]
func (c *CertificateController) Issue(ctx *gin.Context) {
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

	cert, created, err := c.CertificateService.Issue(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	if created {
		util.Created(ctx, cert)
		return
	}
	util.Success(ctx, cert)
}
