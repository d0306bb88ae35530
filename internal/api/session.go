package api

import "net/http"

// UserResolver é o contrato com a camada de sessão/auth, que fica
// fora deste serviço: só precisamos do email do usuário corrente.
type UserResolver interface {
	CurrentEmail(r *http.Request) string
}

// HeaderResolver lê o email do header que o front injeta depois do
// login. Sem sessão válida o header vem vazio.
type HeaderResolver struct{}

func (HeaderResolver) CurrentEmail(r *http.Request) string {
	return r.Header.Get("X-User-Email")
}
