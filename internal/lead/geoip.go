package lead

import (
	"net"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

// Locator 根据客户端 IP 解析国家代码
type Locator interface {
	Country(ip string) string
}

// GeoIPLocator 基于 MaxMind 数据库的国家解析
type GeoIPLocator struct {
	db     *geoip2.Reader
	logger *zap.Logger
}

// NewGeoIPLocator 打开 GeoIP 数据库，路径为空或打开失败时返回禁用的解析器
func NewGeoIPLocator(path string, logger *zap.Logger) *GeoIPLocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("geoip")
	if path == "" {
		return &GeoIPLocator{logger: logger}
	}

	db, err := geoip2.Open(path)
	if err != nil {
		logger.Warn("failed to open GeoIP database, country lookup disabled",
			zap.String("path", path), zap.Error(err))
		return &GeoIPLocator{logger: logger}
	}

	logger.Info("GeoIP locator initialized", zap.String("database_path", path))
	return &GeoIPLocator{db: db, logger: logger}
}

// Enabled 是否已加载数据库
func (l *GeoIPLocator) Enabled() bool {
	return l != nil && l.db != nil
}

// Country 返回 ISO 国家代码，私有地址或查询失败时返回空串
func (l *GeoIPLocator) Country(ipStr string) string {
	if !l.Enabled() {
		return ""
	}
	ip := net.ParseIP(ipStr)
	if ip == nil || isPrivateIP(ip) {
		return ""
	}
	record, err := l.db.Country(ip)
	if err != nil {
		l.logger.Debug("GeoIP lookup failed", zap.String("ip", ipStr), zap.Error(err))
		return ""
	}
	return record.Country.IsoCode
}

// Close 关闭数据库
func (l *GeoIPLocator) Close() error {
	if l.Enabled() {
		return l.db.Close()
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
