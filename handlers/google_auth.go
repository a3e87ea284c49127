package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"club18/database"
	"club18/middleware"
	"club18/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var googleOAuthConfig *oauth2.Config

func init() {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")

	if clientID != "" && clientSecret != "" {
		googleOAuthConfig = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	} else {
		log.Println("Google sign-in not configured; set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func GetGoogleAuthURL(c *gin.Context) {
	if googleOAuthConfig == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google sign-in not configured"})
		return
	}

	url := googleOAuthConfig.AuthCodeURL("state", oauth2.AccessTypeOnline)
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// GoogleOAuthCallback exchanges the authorization code, resolves the
// Google account and signs the member in, creating the account on
// first contact. Social accounts still go through onboarding: they
// start as pending_onboarding like everyone else.
func GoogleOAuthCallback(c *gin.Context) {
	if googleOAuthConfig == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google sign-in not configured"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	token, err := googleOAuthConfig.Exchange(ctx, code)
	if err != nil {
		log.Printf("[GoogleOAuthCallback] exchange error: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to verify Google sign-in"})
		return
	}

	info, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		log.Printf("[GoogleOAuthCallback] userinfo error: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch Google account"})
		return
	}
	if !info.VerifiedEmail {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google account email is not verified"})
		return
	}

	user, err := findOrCreateGoogleUser(ctx, info)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	tokenString, err := middleware.IssueToken(user.ID.Hex(), tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  tokenString,
		"userId": user.ID.Hex(),
		"status": user.Status,
	})
}

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := googleOAuthConfig.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func findOrCreateGoogleUser(ctx context.Context, info *googleUserInfo) (*models.User, error) {
	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"email": info.Email}).Decode(&user)
	if err == nil {
		if user.GoogleID == nil {
			_, _ = database.Users.UpdateOne(ctx, bson.M{"_id": user.ID},
				bson.M{"$set": bson.M{"googleId": info.ID}})
		}
		user.Normalize()
		return &user, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	user = models.User{
		ID:           primitive.NewObjectID(),
		Email:        info.Email,
		AuthProvider: "google",
		GoogleID:     &info.ID,
		Name:         info.Name,
		Image:        info.Picture,
		Status:       models.StatusPendingOnboarding,
		CreatedAt:    time.Now().Unix(),
		LastSeen:     time.Now().Unix(),
	}
	user.Username = "member_" + user.ID.Hex()[:8]

	if _, err := database.Users.InsertOne(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}
