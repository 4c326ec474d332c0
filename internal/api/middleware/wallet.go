// Package middleware holds gin middleware shared by the API routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// walletAddressKey is the gin context key under which the caller's wallet
// address is stored by WalletMiddleware.
const walletAddressKey = "wallet_address"

// HeaderWalletAddress is the request header carrying the caller's connected
// wallet address, set by the frontend after wallet connection.
const HeaderWalletAddress = "X-Wallet-Address"

// WalletMiddleware requires a wallet address on every request in the group.
// Whether that address still holds a live relayer session is checked by the
// lifecycle service at placement time; the middleware only establishes
// identity for reads.
func WalletMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		address := strings.TrimSpace(c.GetHeader(HeaderWalletAddress))
		if address == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "wallet not connected",
				"code":    "ERR_NO_WALLET",
			})
			return
		}
		c.Set(walletAddressKey, address)
		c.Next()
	}
}

// GetWalletAddress returns the wallet address stored by WalletMiddleware, or
// "" when the route is outside the wallet group.
func GetWalletAddress(c *gin.Context) string {
	return c.GetString(walletAddressKey)
}
