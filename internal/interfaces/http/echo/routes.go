package echo

import e "github.com/labstack/echo/v4"

func RegisterRoutes(server *e.Echo, importHandler *ImportHandler, memberHandler *MemberHandler) {
	server.POST("/api/v1/imports/validate", importHandler.ValidateRoster)
	server.POST("/api/v1/imports", importHandler.CommitImport)
	server.GET("/api/v1/imports", importHandler.ListImports)

	server.GET("/api/v1/members", memberHandler.ListMembers)
	server.POST("/api/v1/members/:id/resend", memberHandler.ResendActivation)
	server.POST("/api/v1/members/resend-bulk", memberHandler.BulkResendActivation)
	server.POST("/api/v1/members/:id/activate", memberHandler.ActivateMember)
}
