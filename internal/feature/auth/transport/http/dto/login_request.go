// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// LoginReq は/auth/loginエンドポイントのリクエストボディを表します。
// email_or_username にはメールアドレスとユーザー名のどちらも指定できます。
type LoginReq struct {
	EmailOrUsername string `json:"email_or_username" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

// TokenRes はログイン成功時のレスポンスです。
type TokenRes struct {
	AccessToken string `json:"access_token"`
}
