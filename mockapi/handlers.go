package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context, dados any) {
	if dados == nil {
		c.JSON(http.StatusOK, gin.H{"retorno": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"retorno": true, "dados": dados})
}

func rejected(c *gin.Context, descricao string) {
	// Rejections still travel as 200 + envelope, like the real service.
	c.JSON(http.StatusOK, gin.H{"retorno": false, "descricao": descricao})
}

func (s *Server) sessionPayload(c *gin.Context, acct *Account) gin.H {
	token, err := s.mintToken(acct)
	if err != nil {
		rejected(c, "Falha ao gerar token de sessão")
		return nil
	}
	return gin.H{
		"codigo":  acct.Code,
		"nome":    acct.Name,
		"email":   acct.Email,
		"ativado": 1,
		"eula":    1,
		"token":   token,
	}
}

// handleAuth implements autenticaFaExterno: password login with digested
// credentials.
func (s *Server) handleAuth(c *gin.Context) {
	emailDigest := c.PostForm("email")
	passwordDigest := c.PostForm("senha")
	if c.PostForm("mdi_id") != s.mdiID {
		rejected(c, "Aplicativo desconhecido")
		return
	}
	if c.PostForm("metodo") != "sha1" {
		rejected(c, "Método de criptografia não suportado")
		return
	}

	acct, okAuth := s.authenticate(emailDigest, passwordDigest)
	if !okAuth {
		rejected(c, "Credenciais inválidas")
		return
	}

	if dados := s.sessionPayload(c, acct); dados != nil {
		ok(c, dados)
	}
}

// handleVerifyAuth implements verificaAutenticacaoExterno. The bearer
// token is checked by the middleware; reaching here means it is valid.
func (s *Server) handleVerifyAuth(c *gin.Context) {
	ok(c, nil)
}

// handleRecoverPassword implements recuperarSenhaFaExterno.
func (s *Server) handleRecoverPassword(c *gin.Context) {
	email := c.PostForm("email")
	if _, found := s.accountByEmail(email); !found {
		rejected(c, "E-mail não cadastrado")
		return
	}
	ok(c, nil)
}

// handleQRChallenge implements auth2Externo: mints a challenge bound to
// the requesting email.
func (s *Server) handleQRChallenge(c *gin.Context) {
	email := c.PostForm("email")
	if email == "" {
		rejected(c, "E-mail obrigatório")
		return
	}
	ch := s.createQRChallenge(email)
	ok(c, gin.H{"desafio": ch.token})
}

// handleValidateQRChallenge implements validarAuth2Externo: reports
// whether the companion app approved the challenge for this device.
func (s *Server) handleValidateQRChallenge(c *gin.Context) {
	token := c.PostForm("desafio")
	deviceID := c.PostForm("numero_serie")

	ch, found := s.lookupChallenge(token)
	if !found || ch.app || !ch.approved || ch.deviceID != deviceID {
		rejected(c, "")
		return
	}

	if acct, haveAcct := s.accountByEmail(ch.email); haveAcct {
		if dados := s.sessionPayload(c, acct); dados != nil {
			ok(c, dados)
		}
		return
	}
	ok(c, nil)
}

// handleAppChallenge implements gerarDesafioAuth2Externo.
func (s *Server) handleAppChallenge(c *gin.Context) {
	if c.PostForm("mdi") != s.mdiID {
		rejected(c, "Aplicativo desconhecido")
		return
	}
	deviceID := c.PostForm("numero_serie")
	if deviceID == "" {
		rejected(c, "Número de série obrigatório")
		return
	}
	ch := s.createAppChallenge(deviceID)
	ok(c, gin.H{"desafio": ch.token})
}

// handleValidateAppChallenge implements validarDesafioAuth2Externo. The
// email arrives again at validation time and must match a registered
// account for the session to be minted.
func (s *Server) handleValidateAppChallenge(c *gin.Context) {
	token := c.PostForm("desafio")
	email := c.PostForm("email")
	if c.PostForm("mdi") != s.mdiID {
		rejected(c, "Aplicativo desconhecido")
		return
	}

	ch, found := s.lookupChallenge(token)
	if !found || !ch.app || !ch.approved {
		rejected(c, "")
		return
	}

	if acct, haveAcct := s.accountByEmail(email); haveAcct {
		if dados := s.sessionPayload(c, acct); dados != nil {
			ok(c, dados)
		}
		return
	}
	ok(c, nil)
}

// handleApproveChallenge is the companion-app side of the flow, exposed
// so the development server can exercise the full QR handshake.
func (s *Server) handleApproveChallenge(c *gin.Context) {
	token := c.PostForm("desafio")
	deviceID := c.PostForm("numero_serie")
	if !s.ApproveChallenge(token, deviceID) {
		rejected(c, "Desafio não encontrado")
		return
	}
	ok(c, nil)
}

// handleLayout implements getLayoutExterno.
func (s *Server) handleLayout(c *gin.Context) {
	s.mu.Lock()
	layout := s.layout
	s.mu.Unlock()
	ok(c, layout)
}

// handleCarousel implements getCarrosselExterno with optional tipo/id
// filters.
func (s *Server) handleCarousel(c *gin.Context) {
	tipo := c.PostForm("tipo")
	id := c.PostForm("id")

	s.mu.Lock()
	items := s.carousel
	s.mu.Unlock()

	filtered := items[:0:0]
	for _, item := range items {
		if tipo != "" && item.Type != tipo {
			continue
		}
		if id != "" && item.ID != id {
			continue
		}
		filtered = append(filtered, item)
	}
	ok(c, filtered)
}

// handleContact implements getContatoExterno.
func (s *Server) handleContact(c *gin.Context) {
	s.mu.Lock()
	contact := s.contact
	s.mu.Unlock()
	ok(c, contact)
}

// handleSendContact implements enviarMensagemContatoExterno.
func (s *Server) handleSendContact(c *gin.Context) {
	if c.PostForm("nome") == "" || c.PostForm("email") == "" || c.PostForm("mensagem") == "" {
		rejected(c, "Preencha todos os campos")
		return
	}
	ok(c, nil)
}
