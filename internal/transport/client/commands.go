package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/linkforge/shortlink/internal/domain"
)

// Commands provides command-line operations for the client
type Commands struct {
	client *Client
}

// NewCommands creates a new Commands instance
func NewCommands(client *Client) *Commands {
	return &Commands{
		client: client,
	}
}

// Register creates an account and displays the result
func (c *Commands) Register(ctx context.Context, email, name, password string) error {
	user, err := c.client.Register(ctx, domain.RegisterRequest{
		Email:    email,
		Name:     name,
		Password: password,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Account created:\n")
	fmt.Printf("ID: %s\n", user.ID)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Name: %s\n", user.Name)

	return nil
}

// Login exchanges credentials for a token and displays it
func (c *Commands) Login(ctx context.Context, email, password string) error {
	token, err := c.client.Login(ctx, domain.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Logged in. Pass this token with --token on subsequent commands:\n")
	fmt.Printf("%s\n", token.AccessToken)
	fmt.Printf("Expires in: %ds\n", token.ExpiresIn)

	return nil
}

// Create creates a short link and displays the result
func (c *Commands) Create(ctx context.Context, targetURL, alias string) error {
	link, err := c.client.CreateLink(ctx, domain.CreateLinkRequest{
		TargetURL:   targetURL,
		CustomAlias: alias,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Short link created:\n")
	fmt.Printf("Short Key: %s\n", link.ShortKey)
	fmt.Printf("Short URL: %s\n", link.ShortURL)
	fmt.Printf("Target URL: %s\n", link.TargetURL)
	fmt.Printf("Created At: %s\n", link.CreatedAt.Format(time.RFC3339))

	return nil
}

// List displays one page of links in a table format
func (c *Commands) List(ctx context.Context, page, limit int) error {
	result, err := c.client.ListLinks(ctx, page, limit)
	if err != nil {
		return err
	}

	if len(result.Links) == 0 {
		fmt.Println("No links found")
		return nil
	}

	fmt.Printf("%-15s %-50s %-8s %-20s %s\n", "Short Key", "Target URL", "Active", "Created At", "Clicks")
	fmt.Println(strings.Repeat("-", 110))

	for _, link := range result.Links {
		targetURL := link.TargetURL
		if len(targetURL) > 50 {
			targetURL = targetURL[:47] + "..."
		}

		fmt.Printf("%-15s %-50s %-8t %-20s %d\n",
			link.ShortKey,
			targetURL,
			link.Active,
			link.CreatedAt.Format("2006-01-02 15:04:05"),
			link.ClickCount,
		)
	}

	fmt.Printf("\nPage %d of %d (%d links total)\n",
		result.Pagination.Current, result.Pagination.Total, result.TotalCount)

	return nil
}

// Stats retrieves and displays the analytics for a short link
func (c *Commands) Stats(ctx context.Context, shortKey string) error {
	stats, err := c.client.LinkStats(ctx, shortKey)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			fmt.Printf("Short key '%s' not found\n", shortKey)
			return nil
		}
		return err
	}

	fmt.Printf("Link statistics:\n")
	fmt.Printf("Short Key: %s\n", stats.ShortKey)
	fmt.Printf("Target URL: %s\n", stats.TargetURL)
	fmt.Printf("Active: %t\n", stats.Active)
	fmt.Printf("Total Clicks: %d\n", stats.TotalClicks)
	fmt.Printf("Clicks (7d): %d\n", stats.ClicksLast7Days)
	fmt.Printf("Clicks (30d): %d\n", stats.ClicksLast30Days)

	if len(stats.RecentClicks) > 0 {
		fmt.Printf("\nRecent clicks:\n")
		for _, click := range stats.RecentClicks {
			fmt.Printf("  %s  %s  %s\n",
				click.Timestamp.Format(time.RFC3339), click.SourceIP, click.UserAgent)
		}
	}

	return nil
}

// Delete removes a short link
func (c *Commands) Delete(ctx context.Context, shortKey string) error {
	err := c.client.DeleteLink(ctx, shortKey)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			fmt.Printf("Short key '%s' not found\n", shortKey)
			return nil
		}
		return err
	}

	fmt.Printf("Short link '%s' deleted\n", shortKey)
	return nil
}

// Dashboard retrieves and displays the aggregate dashboard view
func (c *Commands) Dashboard(ctx context.Context) error {
	stats, err := c.client.DashboardStats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Dashboard:\n")
	fmt.Printf("Total URLs: %d\n", stats.TotalURLs)
	fmt.Printf("Active URLs: %d\n", stats.ActiveURLs)
	fmt.Printf("Total Clicks: %d\n", stats.TotalClicks)
	fmt.Printf("Created (7d): %d\n", stats.RecentURLs)

	if len(stats.TopLinks) > 0 {
		fmt.Printf("\nTop links:\n")
		for _, link := range stats.TopLinks {
			fmt.Printf("  %-15s %6d clicks  %s\n", link.ShortKey, link.ClickCount, link.TargetURL)
		}
	}

	return nil
}
