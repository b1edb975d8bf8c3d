// Package xconf 基于 koanf 的配置加载，支持 YAML/JSON 文件或字节数据，以及文件变更热加载。
//
// 基础读取请直接使用 Client() 返回的 koanf 实例；xconf 只提供增值能力：
// 格式识别、结构体反序列化、并发安全的 Reload 与 Watcher。
//
//	cfg, err := xconf.New("configs/xserve.yaml")
//	if err != nil {
//		return err
//	}
//	var server ServerConfig
//	if err := cfg.Unmarshal("server", &server); err != nil {
//		return err
//	}
//
// # 热加载
//
// Watcher 监视配置文件所在目录（编辑器常以"写临时文件再 rename"方式保存），
// 在防抖窗口后调用 Reload 并回调。Run 阻塞直到 ctx 取消，可直接交给 xrun 管理：
//
//	w, err := xconf.Watch(cfg, func(c xconf.Config, err error) { ... })
//	group.Go(w.Run)
//
// Unmarshal 基于 mapstructure：目标结构体中未出现在配置里的字段保持原值，
// 因此可以先填充默认值再 Unmarshal 覆盖。
package xconf
