package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// MailModulePrefix 邮箱模块
	MailModulePrefix = "mail"
	// TextModulePrefix 文本模块
	TextModulePrefix = "text"

	// EntityLock 分布式锁实体
	EntityLock = "lock"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityMD5ToUUID MD5到UUID的映射实体
	EntityMD5ToUUID = "md5_to_uuid"

	// KeySenderDedupSet 发件人邮箱去重集合 (SET)
	// 格式: app:mail:dedup_set
	KeySenderDedupSet = AppPrefix + ":" + MailModulePrefix + ":" + EntityDedupSet

	// KeyTextMD5Set 抽取文本MD5去重集合 (SET)
	// 格式: app:text:dedup_set
	KeyTextMD5Set = AppPrefix + ":" + TextModulePrefix + ":" + EntityDedupSet

	// KeyTextMD5ToSubmissionUUID MD5到SubmissionUUID的映射 (STRING)
	// 格式: app:text:md5_to_uuid:{md5}
	KeyTextMD5ToSubmissionUUID = AppPrefix + ":" + TextModulePrefix + ":" + EntityMD5ToUUID + ":%s"

	// KeyMailboxLock 邮箱轮询分布式锁 (STRING)
	// 格式: app:mail:lock:{mailbox}
	KeyMailboxLock = AppPrefix + ":" + MailModulePrefix + ":" + EntityLock + ":%s"
)
