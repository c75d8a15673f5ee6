package config

import (
	"fmt"
	"net"
	neturl "net/url"
	"strconv"
	"strings"
)

// DSNValue resolves the effective MySQL DSN: an explicit dsn wins, otherwise
// one is assembled from the database.* fields.
func (c *AppConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}
	if v := strings.TrimSpace(c.Database.DSN); v != "" {
		return v
	}

	host := strings.TrimSpace(c.Database.Host)
	if host == "" {
		host = defaultDBHost
	}
	port := c.Database.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := strings.TrimSpace(c.Database.User)
	if user == "" {
		user = defaultDBUser
	}
	name := strings.TrimSpace(c.Database.Name)
	if name == "" {
		name = defaultDBName
	}
	charset := strings.TrimSpace(c.Database.Charset)
	if charset == "" {
		charset = defaultDBCharset
	}
	loc := strings.TrimSpace(c.Database.Loc)
	if loc == "" {
		loc = defaultDBLoc
	}

	cred := user
	if c.Database.Password != "" {
		cred = user + ":" + c.Database.Password
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	return fmt.Sprintf("%s@tcp(%s)/%s?charset=%s&parseTime=True&loc=%s",
		cred, addr, name, charset, neturl.QueryEscape(loc))
}

// RedisURLValue resolves the effective Redis URL.
func (c *AppConfig) RedisURLValue() string {
	if v := strings.TrimSpace(c.RedisURL); v != "" {
		return v
	}
	if v := strings.TrimSpace(c.Redis.URL); v != "" {
		return v
	}

	host := strings.TrimSpace(c.Redis.Host)
	if host == "" {
		host = defaultRedisHost
	}
	port := c.Redis.Port
	if port == 0 {
		port = defaultRedisPort
	}

	u := neturl.URL{
		Scheme: "redis",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(c.Redis.DB),
	}
	if c.Redis.Username != "" || c.Redis.Password != "" {
		u.User = neturl.UserPassword(c.Redis.Username, c.Redis.Password)
	}
	return u.String()
}
