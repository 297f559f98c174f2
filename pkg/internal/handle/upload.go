package handle

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/pdfvault/pkg/internal/service"
	"github.com/yeisme/pdfvault/pkg/internal/types"
	"github.com/yeisme/pdfvault/pkg/log"
	"github.com/yeisme/pdfvault/pkg/middleware"
)

// Uploader 执行上传流程.
type Uploader interface {
	Upload(ctx context.Context, req *types.UploadPDFRequest) (*types.UploadPDFResponse, error)
}

// clientErrors 按校验顺序排列，响应中只返回匹配到的固定文案.
var clientErrors = []error{
	service.ErrNoFile,
	service.ErrEmptyFileName,
	service.ErrNotPDF,
	service.ErrFileTooLarge,
	service.ErrNameTooLong,
}

// formFile 取出 file 分段. 缺少该分段或请求不是 multipart 时返回 nil 文件.
func formFile(c *gin.Context) (*multipart.FileHeader, error) {
	file, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}

	return file, err
}

// UploadPDF 处理 POST /upload-pdf/ 的 multipart 请求：file 必填，name 可选.
func UploadPDF(svc Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		uploadLog := log.Logger().With().Str("request_id", middleware.GetRequestID(c)).Logger()

		var req types.UploadPDFRequest
		if err := c.ShouldBind(&req); err != nil {
			uploadLog.Warn().Err(err).Msg("invalid multipart form")
			errorJSON(c, http.StatusBadRequest, "invalid multipart form: "+err.Error())

			return
		}

		file, err := formFile(c)
		if err != nil {
			uploadLog.Warn().Err(err).Msg("invalid multipart form")
			errorJSON(c, http.StatusBadRequest, "invalid multipart form: "+err.Error())

			return
		}

		req.File = file

		res, err := svc.Upload(c.Request.Context(), &req)
		if err != nil {
			for _, ce := range clientErrors {
				if errors.Is(err, ce) {
					uploadLog.Warn().Err(err).Msg("upload rejected")
					errorJSON(c, http.StatusBadRequest, ce.Error())

					return
				}
			}

			_ = c.Error(err)

			uploadLog.Error().Err(err).Msg("upload failed")
			errorJSON(c, http.StatusInternalServerError, err.Error())

			return
		}

		uploadLog.Info().Str("uuid", res.UUID).Int64("id", res.ID).Msg("upload stored")
		c.JSON(http.StatusOK, res)
	}
}
