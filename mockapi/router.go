package mockapi

import "github.com/gin-gonic/gin"

// SetupRouter sets up the Gin router serving the portal wire contract.
func SetupRouter(s *Server) *gin.Engine {
	router := gin.Default()

	router.POST("/autenticaFaExterno", s.handleAuth)
	router.POST("/recuperarSenhaFaExterno", s.handleRecoverPassword)
	router.POST("/auth2Externo", s.handleQRChallenge)
	router.POST("/validarAuth2Externo", s.handleValidateQRChallenge)
	router.POST("/gerarDesafioAuth2Externo", s.handleAppChallenge)
	router.POST("/validarDesafioAuth2Externo", s.handleValidateAppChallenge)
	router.POST("/aprovarDesafioExterno", s.handleApproveChallenge)

	router.POST("/getLayoutExterno", s.handleLayout)
	router.POST("/getCarrosselExterno", s.handleCarousel)
	router.POST("/getContatoExterno", s.handleContact)
	router.POST("/enviarMensagemContatoExterno", s.handleSendContact)

	// Protected: requires the Bearer session token.
	protected := router.Group("/")
	protected.Use(BearerMiddleware(s))
	{
		protected.POST("/verificaAutenticacaoExterno", s.handleVerifyAuth)
	}

	return router
}
