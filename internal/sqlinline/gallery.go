package sqlinline

const QCreateGalleryEntries = `--sql cba60be0-c10d-4adb-b2eb-54057a4f048b
create table if not exists gallery_entries (
  id uuid primary key,
  display_name text not null,
  title text not null default '',
  mime text not null,
  storage_key text not null,
  uri text not null,
  bytes bigint not null default 0,
  status text not null default 'pending',
  date_added bigint not null,
  date_taken bigint not null,
  created_at timestamptz not null default now()
);
`

const QCreateGalleryEntriesIndex = `--sql 374200d0-715d-4bb9-aa40-74846a306b0e
create index if not exists gallery_entries_status_created_idx
  on gallery_entries (status, created_at desc);
`

const QInsertGalleryEntry = `--sql d2a0bc76-583c-427f-8787-6bd03df058eb
insert into gallery_entries(
  id,
  display_name,
  title,
  mime,
  storage_key,
  uri,
  bytes,
  status,
  date_added,
  date_taken,
  created_at
) values (
  $1::uuid,
  $2::text,
  $3::text,
  $4::text,
  $5::text,
  $6::text,
  0,
  $7::text,
  $8::bigint,
  $9::bigint,
  $10::timestamptz
);
`

const QPublishGalleryEntry = `--sql b7f20f82-dedf-456b-bd1a-89bb3d1e3751
update gallery_entries
set status = 'published', bytes = $2::bigint
where id = $1::uuid;
`

const QDeleteGalleryEntry = `--sql 90440815-115a-45c2-8003-b6cbae66f73b
delete from gallery_entries
where id = $1::uuid;
`

const QSelectGalleryEntryByID = `--sql b2d54733-0054-4933-bf33-228e90a1809a
select id::text, display_name, title, mime, storage_key, uri, bytes, status, date_added, date_taken, created_at
from gallery_entries
where id = $1::uuid
limit 1;
`

const QListPublishedGalleryEntries = `--sql 8015114b-64a1-4e0e-8f0f-b0cf4666e395
select id::text, display_name, title, mime, storage_key, uri, bytes, status, date_added, date_taken, created_at
from gallery_entries
where status = 'published'
order by created_at desc, id asc
limit $1::int offset $2::int;
`
